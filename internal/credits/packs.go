package credits

import (
	"fmt"
	"math"
	"sort"
)

// DefaultPaymentURL is used for packs without their own checkout link.
const DefaultPaymentURL = "https://payhip.com/b/06TAx"

// Pack is a purchasable bundle of exam credits.
type Pack struct {
	ID         string  `json:"id" yaml:"id"`
	Exams      int     `json:"exams" yaml:"exams"`
	PriceUSD   float64 `json:"price" yaml:"price"`
	Label      string  `json:"label" yaml:"label"`
	PaymentURL string  `json:"paymentUrl" yaml:"payment_url"`
}

// PerExam is the unit price rounded to cents.
func (p Pack) PerExam() float64 {
	if p.Exams <= 0 {
		return 0
	}
	return math.Round(p.PriceUSD/float64(p.Exams)*100) / 100
}

// DefaultPacks is the built-in catalogue.
func DefaultPacks() []Pack {
	return []Pack{
		{ID: "3", Exams: 3, PriceUSD: 5, Label: "3 امتحانات", PaymentURL: DefaultPaymentURL},
		{ID: "10", Exams: 10, PriceUSD: 12, Label: "10 امتحانات", PaymentURL: DefaultPaymentURL},
		{ID: "30", Exams: 30, PriceUSD: 24, Label: "30 امتحانات", PaymentURL: DefaultPaymentURL},
	}
}

// Catalog is an ordered, validated set of packs.
type Catalog struct {
	packs []Pack
	byID  map[string]Pack
}

// NewCatalog validates packs, fills missing labels and links, and orders
// them by size.
func NewCatalog(packs []Pack) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Pack, len(packs))}
	for _, p := range packs {
		if p.ID == "" {
			return nil, fmt.Errorf("pack without id")
		}
		if p.Exams <= 0 || p.PriceUSD <= 0 {
			return nil, fmt.Errorf("pack %q: exams and price must be positive", p.ID)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate pack %q", p.ID)
		}
		if p.PaymentURL == "" {
			p.PaymentURL = DefaultPaymentURL
		}
		if p.Label == "" {
			p.Label = fmt.Sprintf("%d امتحانات", p.Exams)
		}
		c.byID[p.ID] = p
		c.packs = append(c.packs, p)
	}
	sort.SliceStable(c.packs, func(i, j int) bool { return c.packs[i].Exams < c.packs[j].Exams })
	return c, nil
}

func (c *Catalog) List() []Pack { return append([]Pack(nil), c.packs...) }

func (c *Catalog) Get(id string) (Pack, bool) {
	p, ok := c.byID[id]
	return p, ok
}
