/*
Package restbq is a small ETL job that fetches JSON from REST APIs,
normalizes it into a table and replaces BigQuery tables with it.

Each source goes through the same steps:

	extract    GET the source URL once (no retries)
	guard      skip empty payloads (null, [] and {}) with a warning
	normalize  one row per array element; flat or recursive-flatten columns
	sanitize   column names become [a-z0-9_]+
	coerce     columns holding arrays or objects become JSON strings
	load       BigQuery load job with WRITE_TRUNCATE

Sources are processed one by one. A failed source is logged and recorded in
the Summary, and the next source is processed anyway.

# Getting started

	env, err := restbq.ReadEnv(".env")
	if err != nil {
		return err
	}

	cfg, err := restbq.ConfigFromEnv(env, restbq.VariantMulti)
	if err != nil {
		return err
	}

	p, err := restbq.New(ctx, cfg, restbq.WithLogger(logger))
	if err != nil {
		return err
	}
	defer p.Close()

	summary := p.Run(ctx, restbq.Sources(cfg))
	for _, r := range summary.Failed() {
		fmt.Printf("%s failed at %s: %v\n", r.Source.Name, r.Stage, r.Err)
	}
*/
package restbq
