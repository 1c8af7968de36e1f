package ledger

import (
	"fmt"

	"github.com/fekuna/omnipos-stock-service/internal/model"
)

// Replay walks entries in order and rebuilds each branch product's quantity history.
// It fails on the first entry that breaks the ledger identity, or whose previous quantity
// does not continue the product's chain. Lot-side entries are identity-checked only, since
// transfers deplete lots without writing a lot-side entry.
func Replay(entries []model.LedgerEntry) (map[string]int, error) {
	balances := map[string]int{}

	for i, entry := range entries {
		h := entry.Header()
		if err := h.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, h.ID, err)
		}

		e, ok := entry.(*model.ProductLedgerEntry)
		if !ok {
			continue
		}

		last, seen := balances[e.ProductID]
		if seen && last != h.PreviousQuantity {
			return nil, fmt.Errorf("entry %d (%s): product %s chain broken, expected previous %d got %d",
				i, h.ID, e.ProductID, last, h.PreviousQuantity)
		}
		balances[e.ProductID] = h.NewQuantity
	}
	return balances, nil
}
