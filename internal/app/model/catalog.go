package model

// CategoryCode is the two-letter jewelry category used in product codes.
type CategoryCode string

const (
	CategoryRing     CategoryCode = "RG"
	CategoryEarring  CategoryCode = "ER"
	CategoryNecklace CategoryCode = "NK"
	CategoryPendant  CategoryCode = "PD"
	CategoryBracelet CategoryCode = "BR"
	CategoryBangle   CategoryCode = "BG"
	CategoryChain    CategoryCode = "CH"
	CategoryAnklet   CategoryCode = "AN"
	CategoryNosePin  CategoryCode = "NP"
	CategoryTilhari  CategoryCode = "TL"
	CategoryGoldCoin CategoryCode = "CN"
)

// MetalTypeCode identifies a gold purity.
type MetalTypeCode string

const (
	MetalGold916 MetalTypeCode = "G916"
	MetalGold999 MetalTypeCode = "G999"
)

// Lookup tables are the source of truth for display names, at write time
// (denormalized into the row) and at read time (backfilled over stored text).
var categoryOrder = []CategoryCode{
	CategoryRing,
	CategoryEarring,
	CategoryNecklace,
	CategoryPendant,
	CategoryBracelet,
	CategoryBangle,
	CategoryChain,
	CategoryAnklet,
	CategoryNosePin,
	CategoryTilhari,
	CategoryGoldCoin,
}

var categoryDisplayNames = map[CategoryCode]string{
	CategoryRing:     "Rings (औंठी)",
	CategoryEarring:  "Earrings (कुण्डल)",
	CategoryNecklace: "Necklaces (हार)",
	CategoryPendant:  "Pendants (लकेट)",
	CategoryBracelet: "Bracelets (ब्रेसलेट)",
	CategoryBangle:   "Bangles (चुरा)",
	CategoryChain:    "Chains (सिक्री)",
	CategoryAnklet:   "Anklets (पाउजु)",
	CategoryNosePin:  "Nose Pins (फुली)",
	CategoryTilhari:  "Tilhari (तिलहरी)",
	CategoryGoldCoin: "Gold Coins (असर्फी)",
}

var metalTypeOrder = []MetalTypeCode{MetalGold916, MetalGold999}

var metalTypeDisplayNames = map[MetalTypeCode]string{
	MetalGold916: "Gold 916 (22K) तेजाबी",
	MetalGold999: "Gold 999 (24K) छापावाल",
}

func (c CategoryCode) IsValid() bool {
	_, ok := categoryDisplayNames[c]
	return ok
}

func (c CategoryCode) DisplayName() string {
	return categoryDisplayNames[c]
}

func (m MetalTypeCode) IsValid() bool {
	_, ok := metalTypeDisplayNames[m]
	return ok
}

func (m MetalTypeCode) DisplayName() string {
	return metalTypeDisplayNames[m]
}

// CategoryRef is the {code, displayName} pair stored on a product.
type CategoryRef struct {
	Code        CategoryCode `gorm:"type:varchar(8);index" json:"code"`
	DisplayName string       `gorm:"type:varchar(100)" json:"displayName"`
}

// MetalTypeRef is the {code, displayName} pair stored on a product.
type MetalTypeRef struct {
	Code        MetalTypeCode `gorm:"type:varchar(8);index" json:"code"`
	DisplayName string        `gorm:"type:varchar(100)" json:"displayName"`
}

func NewCategoryRef(code CategoryCode) CategoryRef {
	return CategoryRef{Code: code, DisplayName: code.DisplayName()}
}

func NewMetalTypeRef(code MetalTypeCode) MetalTypeRef {
	return MetalTypeRef{Code: code, DisplayName: code.DisplayName()}
}

// Categories lists every category in display order.
func Categories() []CategoryRef {
	refs := make([]CategoryRef, 0, len(categoryOrder))
	for _, code := range categoryOrder {
		refs = append(refs, NewCategoryRef(code))
	}
	return refs
}

// MetalTypes lists every metal type in display order.
func MetalTypes() []MetalTypeRef {
	refs := make([]MetalTypeRef, 0, len(metalTypeOrder))
	for _, code := range metalTypeOrder {
		refs = append(refs, NewMetalTypeRef(code))
	}
	return refs
}
