package platform

import (
	"github.com/aretw0/jsonvault/pkg/adapters/fs"
	"github.com/aretw0/jsonvault/pkg/core"
)

// New opens the database at path and wraps it in a core.Service.
//
//	svc, err := jsonvault.Open("./data.json", jsonvault.WithEncryption(true), jsonvault.WithKey(key))
func New(path string, opts ...Option) (*core.Service, error) {
	repo, err := Init(path, opts...)
	if err != nil {
		return nil, err
	}
	return core.NewService(repo), nil
}

// Init builds the repository described by opts.
func Init(path string, opts ...Option) (core.Repository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.repository != nil {
		return o.repository, nil
	}

	return fs.Open(fs.Config{
		Path:      path,
		Encrypted: o.encrypted,
		Key:       o.key,
		ReadOnly:  o.readOnly,
		FileMode:  o.fileMode,
		Logger:    o.logger,
	})
}
