package restbq

import (
	"fmt"

	"golang.org/x/text/encoding"
)

// Source defines a REST endpoint and the table it replaces.
type Source struct {
	// Name is the source's name used in logs and notifications.
	Name string

	// URL is fetched with a single GET request.
	URL string

	// Mode is how the payload is normalized into a frame.
	Mode Mode

	// Encoding is the response body encoding. Nil means UTF-8 unless the
	// response declares another charset.
	Encoding encoding.Encoding

	// Table specifies BigQuery table ID as destination.
	Table string
}

func (s Source) String() string {
	return fmt.Sprintf("%s (%s -> %s)", s.Name, s.URL, s.Table)
}

// Built-in endpoints.
const (
	CountriesURL = "https://restcountries.com/v3.1/all"
	ProductsURL  = "https://fakestoreapi.com/products"
	CartsURL     = "https://fakestoreapi.com/carts"
)

// Sources returns the built-in sources of the configured variant.
func Sources(cfg *Config) []Source {
	if cfg.Variant == VariantMulti {
		return []Source{
			{Name: "products", URL: ProductsURL, Mode: ModeFlat, Table: "products"},
			{Name: "carts", URL: CartsURL, Mode: ModeFlat, Table: "carts"},
		}
	}

	return []Source{
		{Name: "countries", URL: CountriesURL, Mode: ModeFlatten, Table: cfg.Table},
	}
}
