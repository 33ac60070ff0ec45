package view

// Option is one entry of a select or a toggle group.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

type PatchForm struct {
	Title  string
	Price  string
	Status string
	Errors map[string]string
}

type ReplaceForm struct {
	Title       string
	Price       string
	Currency    string
	Status      string
	Description string
	CategoryID  string
	IsHandmade  bool
	Errors      map[string]string
}

type CreateForm struct {
	Title       string
	Price       string
	Stock       string
	Description string
	Currency    string
	CategoryID  string
	Status      string
	IsHandmade  bool
	Errors      map[string]string
}

type ProductRow struct {
	ID       int64
	Title    string
	Slug     string
	Price    string
	Currency string
	Stock    int
	Status   string
	Category string
	Shop     string
	Images   []string

	// Sync is synced, pending, failed or local.
	Sync      string
	SyncLabel string
	SyncError string
	Unsynced  bool

	Busy      bool
	Editing   bool
	Replacing bool
	Patch     PatchForm
	Replace   ReplaceForm
	// StatusChoices also holds the current status when the API returned one
	// the panel does not know.
	StatusChoices []Option
}

type ProductsPage struct {
	Flash  *Flash
	Seller string

	Q        string
	Limit    int
	Page     int
	Statuses []Option
	Limits   []Option

	Loading bool
	Error   string
	Rows    []ProductRow
	HasPrev bool
	HasNext bool

	StatusOptions   []Option
	CurrencyOptions []Option
	Creating        bool
	Create          CreateForm
}

// Pick returns a copy of opts with the option matching value selected.
func Pick(opts []Option, value string) []Option {
	out := make([]Option, len(opts))
	for i, o := range opts {
		o.Selected = o.Value == value
		out[i] = o
	}
	return out
}
