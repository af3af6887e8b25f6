package repositorycache

import (
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cacher/cache"
)

const (
	TextCodeEntityNotConfigured = "ENTITY_NOT_CONFIGURED"
	TextCodeBindingNotFound     = "BINDING_NOT_FOUND"
	TextCodeBindingExists       = "BINDING_EXISTS"
	TextCodeNamespaceTaken      = "NAMESPACE_TAKEN"
)

func entityNotConfigured(entity string) error {
	return goerrors.New("entity is not configured for caching", goerrors.CategoryNotFound).
		WithTextCode(TextCodeEntityNotConfigured).
		WithMetadata(map[string]any{"entity": entity})
}

func bindingNotFound(name string) error {
	return goerrors.New("cache binding not found", cache.CategoryConfiguration).
		WithTextCode(TextCodeBindingNotFound).
		WithMetadata(map[string]any{"binding": name})
}

func bindingExists(name string) error {
	return goerrors.New("cache binding already exists", cache.CategoryConfiguration).
		WithTextCode(TextCodeBindingExists).
		WithMetadata(map[string]any{"binding": name})
}

func configNotFound(name, binding string) error {
	return goerrors.New("cache configuration not found", cache.CategoryConfiguration).
		WithTextCode(cache.TextCodeConfigNotFound).
		WithMetadata(map[string]any{"config": name, "binding": binding})
}

func namespaceTaken(namespace, binding, owner string) error {
	return goerrors.New("cache namespace already used by another binding", cache.CategoryConfiguration).
		WithTextCode(TextCodeNamespaceTaken).
		WithMetadata(map[string]any{"namespace": namespace, "binding": binding, "owner": owner})
}
