package core

import "context"

// ItemResolver looks up item ids by exact name. Nothing is cached;
// every lookup lists the vault again.
type ItemResolver struct {
	client VaultClient
}

// NewItemResolver creates an ItemResolver.
func NewItemResolver(client VaultClient) *ItemResolver {
	return &ItemResolver{client: client}
}

// FindItemID returns the id of the first item whose name equals name.
// Comparison is case-sensitive; when names repeat, listing order decides.
// Entries without an id cannot be fetched and are skipped.
func (r *ItemResolver) FindItemID(ctx context.Context, session, name string) (string, bool, error) {
	items, err := r.client.ListItems(ctx, session)
	if err != nil {
		// Returned as is: the CLI's own message is what ends up in the response body.
		return "", false, err
	}
	for _, item := range items {
		if item.Name == name && item.ID != "" {
			return item.ID, true, nil
		}
	}
	return "", false, nil
}
