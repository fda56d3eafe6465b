package redis

// DefaultKeyPrefix namespaces every key the store writes.
const DefaultKeyPrefix = "copydock:"

// Keys names the redis keys of one store instance.
type Keys struct {
	prefix string
}

// NewKeys returns the key set under prefix, DefaultKeyPrefix when empty.
func NewKeys(prefix string) Keys {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return Keys{prefix: prefix}
}

// Prefix returns the namespace shared by all keys.
func (k Keys) Prefix() string { return k.prefix }

// StatusChecks is a list of JSON status checks, oldest first.
func (k Keys) StatusChecks() string { return k.prefix + "status_checks" }

// WebCaptures is a list of JSON captures, oldest first.
func (k Keys) WebCaptures() string { return k.prefix + "web_captures" }

// Notebooks is a list of JSON notebooks in insertion order.
func (k Keys) Notebooks() string { return k.prefix + "notebooks" }

// NotebookIDs is the set of notebook ids, kept in step with Notebooks.
func (k Keys) NotebookIDs() string { return k.prefix + "notebooks:ids" }

// Settings is the settings hash.
func (k Keys) Settings() string { return k.prefix + "settings" }

// All lists every key, for cleanup.
func (k Keys) All() []string {
	return []string{k.StatusChecks(), k.WebCaptures(), k.Notebooks(), k.NotebookIDs(), k.Settings()}
}
