package model

// Media is a fetched remote asset referenced by a payload URL.
type Media struct {
	SourceURL   string
	ContentType string
	Data        []byte
}

func (m *Media) Size() int64 {
	if m == nil {
		return 0
	}
	return int64(len(m.Data))
}
