package restbq

// Coerce assigns a type to every column of f.
// Columns holding arrays or objects, or scalars of different kinds, become
// STRING columns and their non-null values are replaced by their text form.
func Coerce(f *Frame) {
	for _, c := range f.Columns {
		c.Type = inferType(c.Values)
		if c.Type == TypeString {
			stringify(c.Values)
		}
	}
}

func inferType(values []Value) ColumnType {
	var (
		kind    = KindNull
		integer = true
	)

	for _, v := range values {
		if v.IsNull() {
			continue
		}

		if v.Kind == KindComplex {
			return TypeString
		}

		if kind != KindNull && kind != v.Kind {
			return TypeString
		}
		kind = v.Kind

		if kind == KindNumber && !v.isInteger() {
			integer = false
		}
	}

	switch kind {
	case KindNumber:
		if integer {
			return TypeInteger
		}
		return TypeFloat
	case KindBool:
		return TypeBoolean
	}

	return TypeString
}

func stringify(values []Value) {
	for i, v := range values {
		if v.IsNull() {
			continue
		}
		values[i] = StringValue(v.Text)
	}
}
