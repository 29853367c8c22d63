package network

// IdentifierMap maps a model-local metabolite ID to an external chemical
// identifier (e.g. a KEGG compound key). Metabolites of the same chemical in
// different compartments map to the same identifier.
type IdentifierMap map[string]string

// Lookup returns the identifier of metID, or metID itself when unmapped.
func (m IdentifierMap) Lookup(metID string) string {
	if id, ok := m[metID]; ok && id != "" {
		return id
	}

	return metID
}

// Distinct returns the identifiers of metIDs with duplicates removed,
// preserving first-seen order.
func (m IdentifierMap) Distinct(metIDs []string) []string {
	seen := make(map[string]struct{}, len(metIDs))
	out := make([]string, 0, len(metIDs))
	for _, id := range metIDs {
		key := m.Lookup(id)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}

	return out
}
