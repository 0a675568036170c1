package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/rl1809/warehouse/internal/adapter/storage"
	"github.com/rl1809/warehouse/internal/config"
	"github.com/rl1809/warehouse/internal/core/service"
)

// scriptedPrompter answers prompts from a fixed list, then reports EOF.
type scriptedPrompter struct {
	answers []string
	prompts []string
}

func (s *scriptedPrompter) next(label string) (string, error) {
	s.prompts = append(s.prompts, label)
	if len(s.answers) == 0 {
		return "", io.EOF
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

func (s *scriptedPrompter) Prompt(label string) (string, error)   { return s.next(label) }
func (s *scriptedPrompter) Password(label string) (string, error) { return s.next(label) }

type harness struct {
	console   *Console
	prompter  *scriptedPrompter
	out       *bytes.Buffer
	inventory *service.InventoryService
	suppliers *service.SupplierService
}

func newHarness(t *testing.T, answers ...string) *harness {
	t.Helper()

	cfg := config.StoreConfig{
		Driver:       config.DriverSQLite,
		DSN:          filepath.Join(t.TempDir(), "warehouse.db"),
		MaxOpenConns: 2,
	}
	store, err := storage.Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	inventory := service.NewInventoryService(store, nil, nil)
	suppliers := service.NewSupplierService(store, nil, nil)
	p := &scriptedPrompter{answers: answers}
	out := &bytes.Buffer{}
	c := New(Deps{
		Auth:      service.NewAuthService("admin", hash, nil),
		Inventory: inventory,
		Suppliers: suppliers,
		Reports:   service.NewReportService(inventory, suppliers, nil),
		SessionID: "test-session",
	}, p, out)

	return &harness{console: c, prompter: p, out: out, inventory: inventory, suppliers: suppliers}
}

func (h *harness) feed(answers ...string) {
	h.prompter.answers = append(h.prompter.answers, answers...)
}

var (
	acmeAnswers = []string{"Acme", "acme@example.com", "1 Main St"}
	boltAnswers = []string{"Bolt", "5", "A1", "Hardware", "M6 hex bolt", "10", "0.50", "1"}
)

func TestConsole_Login(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
		wantErr error
		wantOut string
	}{
		{"first attempt", []string{"admin", "admin123"}, nil, "Login successful."},
		{"retry after wrong password", []string{"admin", "nope", "admin", "admin123"}, nil, "Invalid username or password."},
		{"missing fields", []string{"", "", "admin", "admin123"}, nil, "Please enter both username and password."},
		{"attempts exhausted", []string{"admin", "a", "admin", "b", "admin", "c"}, service.ErrInvalidCredentials, "Invalid username or password."},
		{"input closed", nil, io.EOF, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.answers...)
			err := h.console.Login()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(h.out.String(), tt.wantOut) {
				t.Errorf("output %q does not contain %q", h.out.String(), tt.wantOut)
			}
		})
	}
}

func TestConsole_RunSession(t *testing.T) {
	answers := []string{"admin", "admin123", "add-supplier"}
	answers = append(answers, acmeAnswers...)
	answers = append(answers, "add-item")
	answers = append(answers, boltAnswers...)
	answers = append(answers, "items", "report low-stock", "bogus", "exit", "items")
	h := newHarness(t, answers...)

	if err := h.console.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := h.out.String()
	for _, want := range []string{
		"Supplier added successfully! (ID 1)",
		"Item added successfully! (ID 1)",
		"Bolt",
		"$0.50",
		`Unknown command "bogus"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if len(h.prompter.answers) != 1 {
		t.Errorf("Run() should stop at exit, %d answers left", len(h.prompter.answers))
	}
}

func TestConsole_RunEndsOnEOF(t *testing.T) {
	h := newHarness(t, "admin", "admin123")
	if err := h.console.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, want nil on EOF", err)
	}
}

func TestConsole_AddItemBadNumber(t *testing.T) {
	h := newHarness(t, "add-item", "Bolt", "five")
	ctx := context.Background()

	err := h.console.Execute(ctx, h.mustNext(t))
	if !errors.Is(err, errBadNumber) {
		t.Fatalf("Execute() error = %v, want %v", err, errBadNumber)
	}
	if got := h.inventory.GetAllItems(ctx); len(got) != 0 {
		t.Errorf("expected no items, got %d", len(got))
	}
}

func TestConsole_AddItemValidation(t *testing.T) {
	h := newHarness(t)
	h.feed("", "5", "A1", "", "", "0", "", "")

	err := h.console.Execute(context.Background(), "add-item")
	if err == nil || !strings.Contains(err.Error(), "Invalid input") {
		t.Fatalf("Execute() error = %v, want invalid input", err)
	}
}

func TestConsole_UpdateItemKeepsBlankFields(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.feed(acmeAnswers...)
	h.feed(boltAnswers...)
	if err := h.console.Execute(ctx, "add-supplier"); err != nil {
		t.Fatalf("add-supplier: %v", err)
	}
	if err := h.console.Execute(ctx, "add-item"); err != nil {
		t.Fatalf("add-item: %v", err)
	}

	// quantity changes, category and supplier are cleared, the rest is kept
	h.feed("", "7", "", "-", "", "", "", "-")
	if err := h.console.Execute(ctx, "update-item 1"); err != nil {
		t.Fatalf("update-item: %v", err)
	}

	got := h.inventory.GetItemByID(ctx, 1)
	if got == nil {
		t.Fatal("item 1 missing after update")
	}
	if got.Name != "Bolt" || got.Quantity != 7 || got.Location != "A1" || got.Description != "M6 hex bolt" {
		t.Errorf("unexpected item after update: %+v", got)
	}
	if got.Category != "" || got.SupplierID != nil {
		t.Errorf("category and supplier should be cleared, got %q %v", got.Category, got.SupplierID)
	}
	if got.Price.StringFixed(2) != "0.50" {
		t.Errorf("price = %s, want 0.50", got.Price)
	}
	if !strings.Contains(h.prompter.prompts[len(h.prompter.prompts)-8], "[Bolt]") {
		t.Errorf("update prompt should show current value, got %q", h.prompter.prompts[len(h.prompter.prompts)-8])
	}
}

func TestConsole_UpdateMissingItem(t *testing.T) {
	h := newHarness(t)
	err := h.console.Execute(context.Background(), "update-item 42")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("Execute() error = %v, want not found", err)
	}
	if len(h.prompter.prompts) != 0 {
		t.Errorf("no field prompts expected, got %v", h.prompter.prompts)
	}
}

func TestConsole_DeleteSupplierInUse(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.feed(acmeAnswers...)
	h.feed(boltAnswers...)
	h.console.Execute(ctx, "add-supplier")
	h.console.Execute(ctx, "add-item")

	h.feed("y")
	err := h.console.Execute(ctx, "delete-supplier 1")
	if err == nil || !strings.Contains(err.Error(), "Cannot delete") {
		t.Fatalf("Execute() error = %v, want supplier in use", err)
	}
	if h.suppliers.GetSupplierByID(ctx, 1) == nil {
		t.Error("supplier should survive a restricted delete")
	}
}

func TestConsole_DeleteItemConfirmation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.feed(boltAnswers[:7]...)
	h.feed("")
	if err := h.console.Execute(ctx, "add-item"); err != nil {
		t.Fatalf("add-item: %v", err)
	}

	h.feed("n")
	if err := h.console.Execute(ctx, "delete-item 1"); err != nil {
		t.Fatalf("declined delete: %v", err)
	}
	if h.inventory.GetItemByID(ctx, 1) == nil {
		t.Fatal("declined delete removed the item")
	}

	h.feed("y")
	if err := h.console.Execute(ctx, "delete-item 1"); err != nil {
		t.Fatalf("confirmed delete: %v", err)
	}
	if h.inventory.GetItemByID(ctx, 1) != nil {
		t.Fatal("confirmed delete kept the item")
	}

	h.feed("y")
	err := h.console.Execute(ctx, "delete-item 1")
	if err == nil || !strings.Contains(err.Error(), "Not found") {
		t.Fatalf("second delete error = %v, want not found", err)
	}
}

func TestConsole_Export(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.feed(boltAnswers[:7]...)
	h.feed("")
	if err := h.console.Execute(ctx, "add-item"); err != nil {
		t.Fatalf("add-item: %v", err)
	}

	path := filepath.Join(t.TempDir(), "categories.csv")
	if err := h.console.Execute(ctx, "export categories "+path); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "Hardware,1,5,$2.50,1") {
		t.Errorf("unexpected CSV:\n%s", data)
	}
}

func TestConsole_UsageErrors(t *testing.T) {
	h := newHarness(t)
	for _, line := range []string{"item", "item abc", "item 0", "report", "report weekly", "export inventory", "category"} {
		if err := h.console.Execute(context.Background(), line); err == nil {
			t.Errorf("Execute(%q) should fail", line)
		}
	}
}

func (h *harness) mustNext(t *testing.T) string {
	t.Helper()
	line, err := h.prompter.next("warehouse> ")
	if err != nil {
		t.Fatalf("script exhausted: %v", err)
	}
	return line
}
