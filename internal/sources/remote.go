package sources

import (
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds requests made by remote sources when no
// client is supplied
const DefaultRequestTimeout = 30 * time.Second

// RemoteSource is a source backed by an online metadata service
type RemoteSource struct {
	BasicSource
	client *http.Client
}

// NewRemote creates an enabled remote source that fetches with client
func NewRemote(typeID, name string, client *http.Client) *RemoteSource {
	if client == nil {
		client = &http.Client{Timeout: DefaultRequestTimeout}
	}
	return &RemoteSource{BasicSource: BasicSource{typeID: typeID, name: name}, client: client}
}

// HTTPClient returns the client the source fetches with. It carries the
// configured cookie jar.
func (s *RemoteSource) HTTPClient() *http.Client {
	return s.client
}

// BuiltinOption configures RegisterBuiltins
type BuiltinOption func(*builtinOptions)

type builtinOptions struct {
	client *http.Client
}

// WithHTTPClient sets the client shared by the remote built-in sources
func WithHTTPClient(client *http.Client) BuiltinOption {
	return func(o *builtinOptions) {
		if client != nil {
			o.client = client
		}
	}
}
