package ingest

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Canonical lot-detail field names. These double as the rename targets for
// alias resolution and must match the store column names.
const (
	fieldBroker        = "broker"
	fieldMark          = "mark"
	fieldGrade         = "grade"
	fieldLotNumber     = "lot_number"
	fieldInvoiceNumber = "invoice_number"
	fieldQuantityKgs   = "quantity_kgs"
	fieldPackageCount  = "package_count"
	fieldPrice         = "price"
	fieldValuation     = "valuation_or_rp"
	fieldBuyer         = "buyer"
	fieldSaleDate      = "sale_date_internal"
	fieldSaleNumber    = "sale_number_internal"
	fieldLots          = "lots"
)

// FieldAliases maps one canonical field to its source-header aliases, best
// alias first.
type FieldAliases struct {
	Field   string   `yaml:"field"`
	Aliases []string `yaml:"aliases"`
}

// Mapping carries every site-specific vocabulary the pipeline needs: column
// aliases, the mark coalesce list, header-detection keywords, noise tokens
// and the aggregate-row filter for summaries. Brokers rename columns every
// few months; a YAML override lets operators extend the alias tables without
// a rebuild.
type Mapping struct {
	LotFields      []FieldAliases `yaml:"lot_fields"`
	MarkAliases    []string       `yaml:"mark_aliases"`
	SummaryFields  []FieldAliases `yaml:"summary_fields"`
	HeaderKeywords []string       `yaml:"header_keywords"`
	NoiseTokens    []string       `yaml:"noise_tokens"`
	RegionFilters  []string       `yaml:"region_filters"`
}

// DefaultMapping returns the vocabulary observed across Mombasa broker
// exports to date.
func DefaultMapping() *Mapping {
	return &Mapping{
		LotFields: []FieldAliases{
			{Field: fieldBroker, Aliases: []string{"Broker"}},
			{Field: fieldGrade, Aliases: []string{"Grade"}},
			{Field: fieldLotNumber, Aliases: []string{"LotNo", "Lot No", "Lot", "Lot.No"}},
			{Field: fieldInvoiceNumber, Aliases: []string{"Invoice", "Inv.No", "Invoice No"}},
			{Field: fieldQuantityKgs, Aliases: []string{"Net Weight", "Kilos", "Kgs", "Quantity (Kg)", "Total Weight"}},
			{Field: fieldPackageCount, Aliases: []string{"Bags", "Pkgs"}},
			{Field: fieldPrice, Aliases: []string{"Purchased Price", "Final Price", "Price", "Price (USD)", "Price (USc)"}},
			{Field: fieldValuation, Aliases: []string{"Valuation", "Asking Price", "RP"}},
			{Field: fieldBuyer, Aliases: []string{"Buyer", "Buyer Name", "Final Buyer"}},
			{Field: fieldSaleDate, Aliases: []string{"Selling End Time", "Sale Date"}},
			{Field: fieldSaleNumber, Aliases: []string{"Sale Code", "Auction"}},
		},
		MarkAliases: []string{"Selling Mark", "Garden", "Mark", "Estate", "Factory", "Selling Mark - MF Mark"},
		SummaryFields: []FieldAliases{
			{Field: fieldGrade, Aliases: []string{"Region/Grade"}},
			{Field: fieldLots, Aliases: []string{"Lots"}},
			{Field: fieldQuantityKgs, Aliases: []string{"Kilos", "Pkgs", "Kgs"}},
		},
		HeaderKeywords: []string{"LotNo", "Garden", "Grade", "Invoice", "Pkgs", "Kilos", "RP", "Valuation"},
		NoiseTokens:    []string{"NAN", "NONE", "", "-", "NIL"},
		RegionFilters:  []string{"TOTAL", "KENYA", "BURUNDI", "UGANDA", "RWANDA", "MALAWI", "TANZANIA", "MOZAMBIQUE", "ETHIOPIA", "DRC"},
	}
}

// LoadMapping reads a mapping override from a YAML file. Only the sections
// present in the file replace their defaults; absent sections keep the
// built-in vocabulary.
func LoadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "mapping: read %s", path)
	}

	var override Mapping
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, eris.Wrap(err, "mapping: parse yaml")
	}

	m := DefaultMapping()
	if len(override.LotFields) > 0 {
		m.LotFields = override.LotFields
	}
	if len(override.MarkAliases) > 0 {
		m.MarkAliases = override.MarkAliases
	}
	if len(override.SummaryFields) > 0 {
		m.SummaryFields = override.SummaryFields
	}
	if len(override.HeaderKeywords) > 0 {
		m.HeaderKeywords = override.HeaderKeywords
	}
	if len(override.NoiseTokens) > 0 {
		m.NoiseTokens = override.NoiseTokens
	}
	if len(override.RegionFilters) > 0 {
		m.RegionFilters = override.RegionFilters
	}
	return m, nil
}

// noiseSet returns the noise tokens as a lookup set. Tokens are matched
// against cleaned (trimmed, upper-cased) cell values.
func (m *Mapping) noiseSet() map[string]struct{} {
	set := make(map[string]struct{}, len(m.NoiseTokens))
	for _, tok := range m.NoiseTokens {
		set[tok] = struct{}{}
	}
	return set
}
