package partstream

// Value first value of the key.
func (b *Body) Value(key string) (string, Header, bool) {
	fields := b.fields[key]
	if len(fields) == 0 {
		return "", Header{}, false
	}

	return fields[0].Value, fields[0].Header, true
}

// ValueRaw first value of the key.
func (b *Body) ValueRaw(key string) ([]byte, Header, bool) {
	fields := b.fields[key]
	if len(fields) == 0 {
		return nil, Header{}, false
	}

	return []byte(fields[0].Value), fields[0].Header, true
}

// Values all values of the key.
func (b *Body) Values(key string) ([]Field, bool) {
	fields, ok := b.fields[key]
	if !ok {
		return nil, false
	}

	return fields, true
}

// ValueMap all values.
func (b *Body) ValueMap() map[string][]Field {
	return b.fields
}

// File first file of the key.
func (b *Body) File(key string) (*File, bool) {
	files := b.files[key]
	if len(files) == 0 {
		return nil, false
	}

	return files[0], true
}

// Files all files of the key.
func (b *Body) Files(key string) ([]*File, bool) {
	files, ok := b.files[key]
	if !ok {
		return nil, false
	}

	return files, true
}

// FileMap all files.
func (b *Body) FileMap() map[string][]*File {
	return b.files
}
