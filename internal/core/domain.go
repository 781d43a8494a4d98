package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	Employee Role = "EMPLOYEE"
	Manager  Role = "MANAGER"
)

const MinPasswordLength = 8

type (
	Role string

	Date struct {
		time.Time
	}

	Team struct {
		ID   int64 // assigned by the registry
		Name string
	}

	Category struct {
		Name        string
		Description string
	}

	Member struct {
		Name     string
		Surname  string
		Team     *Team
		JoinedAt Date
		Role     Role

		identifier   string
		passwordHash []byte
	}
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrNullArgument       = errors.New("null argument")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidCredentials = errors.New("invalid identifier or password")
)

var (
	ErrEmptyName         = fmt.Errorf("%w: empty name", ErrValidation)
	ErrEmptySurname      = fmt.Errorf("%w: empty surname", ErrValidation)
	ErrEmptyDescription  = fmt.Errorf("%w: empty description", ErrValidation)
	ErrShortPassword     = fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	ErrMissingTeam       = fmt.Errorf("%w: member must belong to a team", ErrValidation)
	ErrInvalidRole       = fmt.Errorf("%w: invalid role", ErrValidation)
	ErrInvalidDate       = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidAmount     = fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	ErrInvalidMethod     = fmt.Errorf("%w: invalid payment method", ErrValidation)
	ErrMissingCategory   = fmt.Errorf("%w: payment must have a category", ErrValidation)
	ErrMissingMember     = fmt.Errorf("%w: payment must have a member", ErrValidation)
	ErrEmptyReceipt      = fmt.Errorf("%w: empty receipt number", ErrValidation)
	ErrEndBeforeStart    = fmt.Errorf("%w: end date must be after start date", ErrValidation)
	ErrNegativePaid      = fmt.Errorf("%w: installments paid cannot be negative", ErrValidation)
	ErrTooManyPaid       = fmt.Errorf("%w: installments paid exceed installment count", ErrValidation)
	ErrUnknownKind       = fmt.Errorf("%w: unknown payment kind", ErrValidation)
	ErrMismatchedDetails = fmt.Errorf("%w: payment details do not match its kind", ErrValidation)
	ErrAlreadyRegistered = fmt.Errorf("%w: already registered", ErrValidation)
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidArgument, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// IsEmpty reports whether the date is unset. Open-ended recurring payments
// carry an empty end date.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// Month returns the calendar month the date falls in.
func (d Date) Month() Month {
	return MonthOf(d.Time)
}

func (r Role) Validate() error {
	switch r {
	case Employee, Manager:
		return nil
	default:
		return ErrInvalidRole
	}
}

// ParseRole accepts the role names case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if err := r.Validate(); err != nil {
		return "", err
	}
	return r, nil
}

func NewTeam(name string) (*Team, error) {
	t := &Team{Name: name}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t Team) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Rename changes the team name. Once the team is registered, rename it
// through Registry.RenameTeam instead.
func (t *Team) Rename(name string) error {
	candidate := *t
	candidate.Name = name
	if err := candidate.Validate(); err != nil {
		return err
	}
	*t = candidate
	return nil
}

func NewCategory(name, description string) (*Category, error) {
	c := &Category{Name: name, Description: description}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(c.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

func (c *Category) SetDescription(description string) error {
	candidate := *c
	candidate.Description = description
	if err := candidate.Validate(); err != nil {
		return err
	}
	*c = candidate
	return nil
}

// NewMember validates the member fields and stores a bcrypt hash of the
// password. The identifier stays empty until the member is enrolled.
func NewMember(name, surname, password string, team *Team, joinedAt Date, role Role) (*Member, error) {
	m := &Member{
		Name:     name,
		Surname:  surname,
		Team:     team,
		JoinedAt: joinedAt,
		Role:     role,
	}
	if err := m.validateFields(); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	m.passwordHash = hash
	return m, nil
}

func (m Member) validateFields() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(m.Surname) == "" {
		return ErrEmptySurname
	}
	if m.Team == nil {
		return ErrMissingTeam
	}
	if err := m.JoinedAt.Validate(); err != nil {
		return fmt.Errorf("invalid join date: %w", err)
	}
	return m.Role.Validate()
}

func (m Member) Validate() error {
	if err := m.validateFields(); err != nil {
		return err
	}
	if len(m.passwordHash) == 0 {
		return ErrShortPassword
	}
	return nil
}

// Identifier returns the login identifier assigned at enrollment.
func (m *Member) Identifier() string {
	return m.identifier
}

// Enroll assigns a fresh identifier that does not collide with any of the
// existing members.
func (m *Member) Enroll(existing []*Member, domain string) error {
	id, err := generateIdentifier(m.Name, m.Surname, existing, domain)
	if err != nil {
		return err
	}
	m.identifier = id
	return nil
}

// FullName returns "Name Surname".
func (m *Member) FullName() string {
	return m.Name + " " + m.Surname
}

// IsManager reports whether the member has the manager role.
func (m *Member) IsManager() bool {
	return m.Role == Manager
}

func (m *Member) SetPassword(password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	m.passwordHash = hash
	return nil
}

// CheckPassword compares password against the stored hash.
func (m *Member) CheckPassword(password string) bool {
	if len(m.passwordHash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)) == nil
}

// SetName, SetTeam and SetRole are for members not yet handed to a
// registry. A registered member is updated with Registry.UpdateMember.
func (m *Member) SetName(name, surname string) error {
	candidate := *m
	candidate.Name = name
	candidate.Surname = surname
	if err := candidate.Validate(); err != nil {
		return err
	}
	*m = candidate
	return nil
}

func (m *Member) SetTeam(team *Team) error {
	candidate := *m
	candidate.Team = team
	if err := candidate.Validate(); err != nil {
		return err
	}
	*m = candidate
	return nil
}

func (m *Member) SetRole(role Role) error {
	candidate := *m
	candidate.Role = role
	if err := candidate.Validate(); err != nil {
		return err
	}
	*m = candidate
	return nil
}

func hashPassword(password string) ([]byte, error) {
	if len(password) < MinPasswordLength {
		return nil, ErrShortPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, fmt.Errorf("%w: password too long", ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}
