package catalog

import (
	"time"

	"github.com/ValentinKolb/flatmsg/lib/marshal"
	"github.com/ValentinKolb/flatmsg/lib/typemeta"
	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
	"github.com/google/uuid"
)

// Status is the lifecycle state of an item
type Status int

const (
	StatusDraft        Status = iota // 0: Not yet visible.
	StatusActive                     // 1: Listed and orderable.
	StatusDiscontinued               // 2: Listed but no longer orderable.
)

// Dimensions of an item, Unit applies to all three values
type Dimensions struct {
	Width  float64 `flatmsg:"width"`
	Height float64 `flatmsg:"height"`
	Depth  float64 `flatmsg:"depth"`
	Unit   string  `flatmsg:"unit"`
}

// Item is one catalog entry
type Item struct {
	ID         uuid.UUID
	Name       string
	Tags       []string
	Price      float64
	Status     Status
	Attributes map[string]string
	Stock      map[string]int
	Dimensions *Dimensions
	Released   time.Time
	Notes      *string
}

// TotalStock sums the stock of all locations
func (i *Item) TotalStock() int {
	total := 0
	for _, n := range i.Stock {
		total += n
	}
	return total
}

// --------------------------------------------------------------------------
// Schema Registration
// --------------------------------------------------------------------------

// Register declares the catalog types in e. It must be called before items are
// encoded or decoded with e.
func Register(e *marshal.Engine) error {
	typemeta.RegisterEnum(e.Types(), map[Status]string{
		StatusDraft:        "draft",
		StatusActive:       "active",
		StatusDiscontinued: "discontinued",
	})

	if err := marshal.RegisterDerived[Dimensions](e); err != nil {
		return err
	}

	e.RegisterSchema(typemeta.NewSchema[Item](
		typemeta.FieldOf("id", func(i *Item) uuid.UUID { return i.ID }, func(i *Item, v uuid.UUID) { i.ID = v }),
		typemeta.FieldOf("name", func(i *Item) string { return i.Name }, func(i *Item, v string) { i.Name = v }),
		typemeta.FieldOf("tags", func(i *Item) []string { return i.Tags }, func(i *Item, v []string) { i.Tags = v }),
		typemeta.FieldOf("price", func(i *Item) float64 { return i.Price }, func(i *Item, v float64) { i.Price = v }),
		typemeta.FieldOf("status", func(i *Item) Status { return i.Status }, func(i *Item, v Status) { i.Status = v }),
		typemeta.FieldOf("attributes", func(i *Item) map[string]string { return i.Attributes }, func(i *Item, v map[string]string) { i.Attributes = v }),
		typemeta.FieldOf("stock", func(i *Item) map[string]int { return i.Stock }, func(i *Item, v map[string]int) { i.Stock = v }),
		typemeta.FieldOf("dimensions", func(i *Item) *Dimensions { return i.Dimensions }, func(i *Item, v *Dimensions) { i.Dimensions = v }),
		typemeta.FieldOf("released", func(i *Item) time.Time { return i.Released }, func(i *Item, v time.Time) { i.Released = v }),
		typemeta.FieldOf("notes", func(i *Item) *string { return i.Notes }, func(i *Item, v *string) { i.Notes = v }),
		typemeta.ReadOnlyField("totalStock", (*Item).TotalStock),
	))
	return nil
}

// Encode flattens an item into a message
func Encode(e *marshal.Engine, item Item) (*urlmsg.Message, error) {
	return marshal.Marshal(e, item)
}

// Decode reconstructs an item from a message
func Decode(e *marshal.Engine, msg *urlmsg.Message) (Item, error) {
	return marshal.Unmarshal[Item](e, msg)
}
