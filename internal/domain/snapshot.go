package domain

// DefaultDiscountOrder is the cadence used when the document carries none.
const DefaultDiscountOrder = 5

// Snapshot is the whole store document at a point in time.
type Snapshot struct {
	Products      []Product      `json:"products"`
	Users         []User         `json:"users"`
	DiscountCodes []DiscountCode `json:"discountCodes"`
	DiscountOrder int            `json:"discountOrder"`

	// Version is the store's concurrency token. It is never part of the
	// document body.
	Version int64 `json:"-"`
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		Products:      []Product{},
		Users:         []User{},
		DiscountCodes: []DiscountCode{},
		DiscountOrder: DefaultDiscountOrder,
	}
}

func (s *Snapshot) FindUser(userID string) (int, bool) {
	for i := range s.Users {
		if s.Users[i].UserID == userID {
			return i, true
		}
	}
	return -1, false
}

// TotalOrders counts orders across every user.
func (s *Snapshot) TotalOrders() int {
	total := 0
	for i := range s.Users {
		total += len(s.Users[i].Orders)
	}
	return total
}

// Clone returns a deep copy that shares no slices with s.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}

	c := &Snapshot{
		Products:      cloneSlice(s.Products),
		DiscountCodes: cloneSlice(s.DiscountCodes),
		DiscountOrder: s.DiscountOrder,
		Version:       s.Version,
	}

	if s.Users != nil {
		c.Users = make([]User, len(s.Users))
		for i, u := range s.Users {
			u.Orders = cloneOrders(u.Orders)
			c.Users[i] = u
		}
	}

	return c
}

func cloneOrders(orders []Order) []Order {
	if orders == nil {
		return nil
	}
	out := make([]Order, len(orders))
	for i, o := range orders {
		o.Items = cloneSlice(o.Items)
		out[i] = o
	}
	return out
}

// cloneSlice copies s, keeping nil and empty slices distinct.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
