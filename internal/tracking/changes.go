package tracking

// Changes is an update request: a nil value removes the key, anything else
// inserts or overwrites it.
type Changes map[string]*string

// NewChanges returns an empty, writable Changes.
func NewChanges() Changes {
	return make(Changes)
}

// Set records an upsert of key to value.
func (c Changes) Set(key, value string) Changes {
	c[key] = &value
	return c
}

// Remove records the removal of key.
func (c Changes) Remove(key string) Changes {
	c[key] = nil
	return c
}

// String returns a pointer to v for building Changes literals.
func String(v string) *string {
	return &v
}

// applyTo merges c into props. Keys not named in c are left alone, as is
// the empty key, which the file format cannot hold.
func (c Changes) applyTo(props map[string]string) {
	for k, v := range c {
		switch {
		case k == "":
			continue
		case v == nil:
			delete(props, k)
		default:
			props[k] = *v
		}
	}
}
