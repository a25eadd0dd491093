package core

import (
	"errors"
	"strings"
)

const (
	CategoryFood      Category = "식비"
	CategoryTransport Category = "교통"
	CategoryShopping  Category = "쇼핑"
	CategoryCulture   Category = "문화"
	CategoryUtilities Category = "공과금"
	CategoryEtc       Category = "기타"
)

type (
	// Category is one of the six fixed expense labels.
	Category string

	// Item is a single expense entry. Negative amounts are treated as
	// income by the calendar rollup; the store does not reject them.
	Item struct {
		ID       int64    `json:"id"`
		Category Category `json:"category"`
		Amount   int64    `json:"amount"`
		Name     string   `json:"name"`
		Memo     string   `json:"memo"`
		Time     string   `json:"time"` // "HH:MM"
		Tags     []string `json:"tags"`
	}

	// DayRecord holds all items and the free-text note for one calendar day.
	// At most one record exists per date.
	DayRecord struct {
		Date      string `json:"date"` // "YYYY-MM-DD"
		Items     []Item `json:"items"`
		DailyNote string `json:"dailyNote"`
	}

	// Snapshot is the unit of persistence: the whole ledger plus the tag
	// vocabulary and display preferences. The JSON field names match the
	// persisted document shape.
	Snapshot struct {
		Records []DayRecord `json:"data"`
		Tags    []string    `json:"allTags"`
		Theme   string      `json:"theme"`
		Font    string      `json:"font"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidTime     = errors.New("invalid time")
	ErrItemNotFound    = errors.New("item not found")
)

// Categories returns the fixed category labels in display order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransport,
		CategoryShopping,
		CategoryCulture,
		CategoryUtilities,
		CategoryEtc,
	}
}

// IsValid reports whether c is one of the fixed labels.
func (c Category) IsValid() bool {
	switch c {
	case CategoryFood, CategoryTransport, CategoryShopping,
		CategoryCulture, CategoryUtilities, CategoryEtc:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

func (i Item) Validate() error {
	if len(strings.TrimSpace(i.Name)) == 0 {
		return ErrEmptyName
	}
	if len(i.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if i.Amount == 0 {
		return ErrInvalidAmount
	}
	if !i.Category.IsValid() {
		return ErrInvalidCategory
	}
	if i.Time != "" {
		if err := validateClock(i.Time); err != nil {
			return err
		}
	}
	return nil
}

func validateClock(s string) error {
	if len(s) != 5 || s[2] != ':' {
		return ErrInvalidTime
	}
	h := digits2(s[0], s[1])
	m := digits2(s[3], s[4])
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return ErrInvalidTime
	}
	return nil
}

func digits2(a, b byte) int {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return -1
	}
	return int(a-'0')*10 + int(b-'0')
}

// Total returns the arithmetic sum of the record's item amounts.
func (r DayRecord) Total() int64 {
	var sum int64
	for _, it := range r.Items {
		sum += it.Amount
	}
	return sum
}

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	out := i
	if i.Tags != nil {
		out.Tags = append([]string(nil), i.Tags...)
	}
	return out
}

// Clone returns a deep copy of the record.
func (r DayRecord) Clone() DayRecord {
	out := r
	if r.Items != nil {
		out.Items = make([]Item, len(r.Items))
		for idx, it := range r.Items {
			out.Items[idx] = it.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.Records != nil {
		out.Records = make([]DayRecord, len(s.Records))
		for idx, r := range s.Records {
			out.Records[idx] = r.Clone()
		}
	}
	if s.Tags != nil {
		out.Tags = append([]string(nil), s.Tags...)
	}
	return out
}
