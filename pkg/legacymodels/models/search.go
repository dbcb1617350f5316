package models

// User list orderings.
const (
	OrderUserIDAsc            = "u.id ASC"
	OrderUserIDDesc           = "u.id DESC"
	OrderUserLastActivityAsc  = "u.last_activity ASC"
	OrderUserLastActivityDesc = "u.last_activity DESC"
)

var UserOrders = []string{
	OrderUserIDAsc,
	OrderUserIDDesc,
	OrderUserLastActivityAsc,
	OrderUserLastActivityDesc,
}

// File list orderings.
const (
	OrderFileCreatedAsc  = "f.created ASC"
	OrderFileCreatedDesc = "f.created DESC"
)

var FileOrders = []string{
	OrderFileCreatedAsc,
	OrderFileCreatedDesc,
}

// SearchUsersRequest filters the user list. Query matches the username or any
// extra-data value with a LIKE. Nil filters are skipped.
type SearchUsersRequest struct {
	Query      string
	AdminLevel *int
	Deleted    *bool
	Order      string
	Limit      int64
	Offset     int64
}

// OrderOrDefault returns the requested order if it is one of UserOrders,
// otherwise the default id-descending order.
func (r SearchUsersRequest) OrderOrDefault() string {
	for _, o := range UserOrders {
		if r.Order == o {
			return o
		}
	}
	return OrderUserIDDesc
}
