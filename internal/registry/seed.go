package registry

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"gastos/internal/core"
)

//go:embed seed.toml
var defaultSeed string

type (
	// SeedData is the TOML document used to preload a registry.
	SeedData struct {
		Teams      []SeedTeam     `toml:"teams"`
		Categories []SeedCategory `toml:"categories"`
		Members    []SeedMember   `toml:"members"`
		Payments   []SeedPayment  `toml:"payments"`
	}

	SeedTeam struct {
		Name string `toml:"name"`
	}

	SeedCategory struct {
		Name        string `toml:"name"`
		Description string `toml:"description"`
	}

	SeedMember struct {
		Name     string `toml:"name"`
		Surname  string `toml:"surname"`
		Password string `toml:"password"`
		Team     string `toml:"team"`
		Joined   string `toml:"joined"`
		Role     string `toml:"role"`
	}

	// SeedPayment references its member by "Name Surname" and its category
	// by name. One-time payments set Date and Receipt, recurring ones set
	// Start and optionally End.
	SeedPayment struct {
		Kind             string `toml:"kind"`
		Method           string `toml:"method"`
		Category         string `toml:"category"`
		Member           string `toml:"member"`
		Description      string `toml:"description"`
		Amount           string `toml:"amount"`
		Date             string `toml:"date"`
		Receipt          string `toml:"receipt"`
		Start            string `toml:"start"`
		End              string `toml:"end"`
		InstallmentsPaid int    `toml:"installments_paid"`
	}
)

// DefaultSeed returns the built-in reference data: four teams, ten
// categories, twenty-two members and their payments.
func DefaultSeed() (*SeedData, error) {
	return decodeSeed(func(v any) (toml.MetaData, error) { return toml.Decode(defaultSeed, v) })
}

// LoadSeedFile reads seed data from a TOML file on disk.
func LoadSeedFile(path string) (*SeedData, error) {
	return decodeSeed(func(v any) (toml.MetaData, error) { return toml.DecodeFile(path, v) })
}

func decodeSeed(decode func(any) (toml.MetaData, error)) (*SeedData, error) {
	var data SeedData
	md, err := decode(&data)
	if err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("decode seed: unknown keys %s", strings.Join(keys, ", "))
	}
	return &data, nil
}

// Preload registers every entity of data in order. It stops at the first
// entity that fails validation.
func (r *Registry) Preload(data *SeedData) error {
	if data == nil {
		return fmt.Errorf("preload: %w", core.ErrNullArgument)
	}

	for _, st := range data.Teams {
		team, err := core.NewTeam(st.Name)
		if err != nil {
			return fmt.Errorf("seed team %q: %w", st.Name, err)
		}
		if err := r.AddTeam(team); err != nil {
			return fmt.Errorf("seed team %q: %w", st.Name, err)
		}
	}

	for _, sc := range data.Categories {
		cat, err := core.NewCategory(sc.Name, sc.Description)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", sc.Name, err)
		}
		if err := r.AddCategory(cat); err != nil {
			return fmt.Errorf("seed category %q: %w", sc.Name, err)
		}
	}

	byName := make(map[string]*core.Member, len(data.Members))
	for _, sm := range data.Members {
		joined, err := core.ParseDate(sm.Joined)
		if err != nil {
			return fmt.Errorf("seed member %s %s: %w", sm.Name, sm.Surname, err)
		}
		role, err := core.ParseRole(sm.Role)
		if err != nil {
			return fmt.Errorf("seed member %s %s: %w", sm.Name, sm.Surname, err)
		}
		m, err := r.CreateMember(sm.Name, sm.Surname, sm.Password, sm.Team, joined, role)
		if err != nil {
			return fmt.Errorf("seed member %s %s: %w", sm.Name, sm.Surname, err)
		}
		if _, dup := byName[m.FullName()]; !dup {
			byName[m.FullName()] = m
		}
	}

	for i, sp := range data.Payments {
		p, err := r.seedPayment(sp, byName)
		if err != nil {
			return fmt.Errorf("seed payment %d (%s): %w", i+1, sp.Description, err)
		}
		if err := r.AddPayment(p); err != nil {
			return fmt.Errorf("seed payment %d (%s): %w", i+1, sp.Description, err)
		}
	}
	return nil
}

func (r *Registry) seedPayment(sp SeedPayment, members map[string]*core.Member) (*core.Payment, error) {
	member, ok := members[sp.Member]
	if !ok {
		return nil, fmt.Errorf("member %q: %w", sp.Member, core.ErrNotFound)
	}
	category, err := r.CategoryByName(sp.Category)
	if err != nil {
		return nil, err
	}
	method, err := core.ParsePaymentMethod(sp.Method)
	if err != nil {
		return nil, err
	}
	amount, err := core.ParseAmount(sp.Amount)
	if err != nil {
		return nil, err
	}

	switch core.PaymentKind(sp.Kind) {
	case core.OneTime:
		date, err := core.ParseDate(sp.Date)
		if err != nil {
			return nil, err
		}
		return core.NewOneTimePayment(method, category, member, sp.Description, amount, date, sp.Receipt)
	case core.Recurring:
		start, err := core.ParseDate(sp.Start)
		if err != nil {
			return nil, err
		}
		var end core.Date
		if sp.End != "" {
			if end, err = core.ParseDate(sp.End); err != nil {
				return nil, err
			}
		}
		return core.NewRecurringPayment(method, category, member, sp.Description, amount, start, end, sp.InstallmentsPaid)
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownKind, sp.Kind)
	}
}
