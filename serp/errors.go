package serp

import "errors"

var (
	// ErrAPIKeyRequired indicates the client was created without an API key.
	ErrAPIKeyRequired = errors.New("api key is required")

	// ErrEngineIDRequired indicates the client was created without a search engine id.
	ErrEngineIDRequired = errors.New("search engine id is required")

	// ErrInvalidMaxResults indicates a result limit outside 1..MaxPageDepth.
	ErrInvalidMaxResults = errors.New("max results must be between 1 and 100")

	// ErrAPI indicates the API answered with an error payload.
	ErrAPI = errors.New("search api error")
)
