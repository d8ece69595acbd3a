package log

// Field is one structured key/value pair of an entry.
type Field struct {
	Key   string
	Value any
}

// appendPairs adds alternating key/value arguments to fs. A key already
// present is overwritten in place so first-seen order is kept. Non-string
// keys and a trailing odd key are ignored.
func appendPairs(fs []Field, keysAndValues ...any) []Field {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fs = setField(fs, key, keysAndValues[i+1])
	}
	return fs
}

func mergeFields(fs []Field, more []Field) []Field {
	for _, f := range more {
		fs = setField(fs, f.Key, f.Value)
	}
	return fs
}

func setField(fs []Field, key string, value any) []Field {
	for i := range fs {
		if fs[i].Key == key {
			fs[i].Value = value
			return fs
		}
	}
	return append(fs, Field{Key: key, Value: value})
}
