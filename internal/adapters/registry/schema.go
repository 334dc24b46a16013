package registry

// indexResponse is the registry's answer for one identifier.
type indexResponse struct {
	Archives []archiveRef `json:"archives"`
}

// archiveRef names one archive of the transitive set. URL may be relative to
// the index endpoint.
type archiveRef struct {
	URL   string `json:"url"`
	XXH64 string `json:"xxh64"`
}
