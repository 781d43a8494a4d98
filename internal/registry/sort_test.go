package registry

import (
	"testing"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

func TestSortByAmountDescIsStable(t *testing.T) {
	mk := func(id int64, amount string) *core.Payment {
		return &core.Payment{ID: id, Amount: decimal.RequireFromString(amount)}
	}
	payments := []*core.Payment{mk(1, "10"), mk(2, "300"), mk(3, "10"), mk(4, "45.5"), mk(5, "300")}

	SortByAmountDesc(payments)

	if want := []int64{2, 5, 4, 1, 3}; !equalIDs(ids(payments), want) {
		t.Fatalf("got %v, want %v", ids(payments), want)
	}
}

func TestSortByIdentifier(t *testing.T) {
	var members []*core.Member
	for _, name := range [][2]string{{"Tom", "Li"}, {"Ana", "Lopez"}, {"Mia", "Z"}, {"Ana", "Lopez"}} {
		m := &core.Member{Name: name[0], Surname: name[1]}
		if err := m.Enroll(members, ""); err != nil {
			t.Fatalf("Enroll: %v", err)
		}
		members = append(members, m)
	}

	SortByIdentifier(members)

	want := []string{"analop1@laEmpresa.com", "analop@laEmpresa.com", "miaz@laEmpresa.com", "tomli@laEmpresa.com"}
	for i, m := range members {
		if m.Identifier() != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, m.Identifier(), want[i])
		}
	}
}
