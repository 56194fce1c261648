package customHttpClient

import (
	"net/http"

	"docquery/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// PooledClient reuses connections across the embedding and generation calls
// of one ingestion run.
func PooledClient() *http.Client {
	return &http.Client{Transport: customTransport}
}
