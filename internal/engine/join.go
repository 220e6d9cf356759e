package engine

import "vatmonitor/internal/models"

// Sentinel labels substituted for references that resolve to nothing.
const (
	UnknownBusiness = "Unknown Business"
	UnknownSector   = "Unknown Sector"
	UnknownBranch   = "Unknown Branch"
	UnknownType     = "Unknown Transaction Type"
	UnknownState    = "Unknown State"
	UnknownRegion   = "Unknown"
)

// Resolve looks id up in ix. It is the single join primitive; callers choose
// the fallback.
func Resolve[T any](ix *Index[T], id int) (T, bool) {
	return ix.Resolve(id)
}

func (s *Store) Business(id int) (models.Business, bool) { return Resolve(s.Businesses, id) }
func (s *Store) Sector(id int) (models.Sector, bool) { return Resolve(s.Sectors, id) }
func (s *Store) Branch(id int) (models.Branch, bool) { return Resolve(s.Branches, id) }
func (s *Store) State(id int) (models.State, bool) { return Resolve(s.States, id) }
func (s *Store) TransactionType(id int) (models.TransactionType, bool) {
	return Resolve(s.Types, id)
}

func (s *Store) BusinessName(id int) string {
	if b, ok := Resolve(s.Businesses, id); ok {
		return b.Name
	}
	return UnknownBusiness
}

func (s *Store) BranchName(id int) string {
	if b, ok := Resolve(s.Branches, id); ok {
		return b.Name
	}
	return UnknownBranch
}

func (s *Store) TypeName(id int) string {
	if t, ok := Resolve(s.Types, id); ok {
		return t.Name
	}
	return UnknownType
}

func (s *Store) StateName(id int) string {
	if st, ok := Resolve(s.States, id); ok {
		return st.Name
	}
	return UnknownState
}

// SectorOf returns the sector a transaction belongs to: its own sector_id
// when that resolves, else its business's sector. The id is 0 when neither
// resolves.
func (s *Store) SectorOf(tx Transaction) (int, string) {
	if sec, ok := Resolve(s.Sectors, tx.SectorID); ok {
		return sec.ID, sec.Name
	}
	if b, ok := Resolve(s.Businesses, tx.BusinessID); ok {
		if sec, ok := Resolve(s.Sectors, b.SectorID); ok {
			return sec.ID, sec.Name
		}
	}
	return 0, UnknownSector
}

// RegionOf follows transaction -> state -> region.
func (s *Store) RegionOf(tx Transaction) string {
	if st, ok := Resolve(s.States, tx.StateID); ok && st.Region != "" {
		return st.Region
	}
	return UnknownRegion
}

// Enriched is a transaction with every reference resolved to a label.
type Enriched struct {
	Transaction
	Sector   string
	Business string
	Branch   string
	Type     string
	State    string
	Region   string
}

func (s *Store) Enrich(tx Transaction) Enriched {
	_, sector := s.SectorOf(tx)
	return Enriched{
		Transaction: tx,
		Sector:      sector,
		Business:    s.BusinessName(tx.BusinessID),
		Branch:      s.BranchName(tx.BranchID),
		Type:        s.TypeName(tx.TypeID),
		State:       s.StateName(tx.StateID),
		Region:      s.RegionOf(tx),
	}
}

