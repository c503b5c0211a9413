package badger

import "errors"

// Repositories bundles every repository sharing one Backend.
type Repositories struct {
	Backend   *Backend
	Tokens    *TokenRepository
	Index     *IndexRepository
	Documents *DocumentRepository
}

// NewRepositories creates all repositories over an open backend.
// The backend is owned by the returned Repositories and closed with it.
func NewRepositories(backend *Backend) (*Repositories, error) {
	tokens, err := NewTokenRepository(backend)
	if err != nil {
		return nil, err
	}
	index, err := NewIndexRepository(backend)
	if err != nil {
		return nil, err
	}
	documents, err := NewDocumentRepository(backend)
	if err != nil {
		return nil, err
	}
	return &Repositories{
		Backend:   backend,
		Tokens:    tokens,
		Index:     index,
		Documents: documents,
	}, nil
}

// OpenRepositories opens a backend at filePath and creates all repositories over it.
func OpenRepositories(filePath string, inMemory bool, opts ...BackendOption) (*Repositories, error) {
	backend, err := OpenBackend(filePath, inMemory, opts...)
	if err != nil {
		return nil, err
	}
	repos, err := NewRepositories(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return repos, nil
}

// Close closes every repository and then the backend.
func (r *Repositories) Close() error {
	return errors.Join(
		r.Documents.Close(),
		r.Index.Close(),
		r.Tokens.Close(),
		r.Backend.Close(),
	)
}
