package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/rl1809/warehouse/internal/core/domain"
	"github.com/rl1809/warehouse/internal/core/service"
	"github.com/rl1809/warehouse/internal/platform/observability"
)

const maxLoginAttempts = 3

var errBadNumber = errors.New("Please enter valid numbers")

type Authenticator interface {
	Login(username, password string) error
}

type Inventory interface {
	AddItem(ctx context.Context, draft domain.ItemDraft) (int64, error)
	UpdateItem(ctx context.Context, item domain.Item) error
	DeleteItem(ctx context.Context, id int64) error
	GetItemByID(ctx context.Context, id int64) *domain.Item
	GetAllItems(ctx context.Context) []domain.Item
	SearchItemsByName(ctx context.Context, term string) []domain.Item
	GetItemsByCategory(ctx context.Context, category string) []domain.Item
	GetLowStockItems(ctx context.Context) []domain.Item
	GetAllCategories(ctx context.Context) []string
}

type Suppliers interface {
	AddSupplier(ctx context.Context, draft domain.SupplierDraft) (int64, error)
	UpdateSupplier(ctx context.Context, supplier domain.Supplier) error
	DeleteSupplier(ctx context.Context, id int64) error
	GetAllSuppliers(ctx context.Context) []domain.Supplier
	GetSupplierByID(ctx context.Context, id int64) *domain.Supplier
}

type Deps struct {
	Auth      Authenticator
	Inventory Inventory
	Suppliers Suppliers
	Reports   Reporter
	Logger    observability.Logger
	Tracer    observability.Tracer
	SessionID string
	// Timeout bounds each store-backed call; zero means no limit.
	Timeout time.Duration
}

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, args []string) error
}

// Console is the interactive admin front end over the domain services.
type Console struct {
	deps     Deps
	in       Prompter
	out      io.Writer
	commands map[string]command
}

func New(deps Deps, in Prompter, out io.Writer) *Console {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Tracer == nil {
		deps.Tracer = noop.NewTracerProvider().Tracer("")
	}
	if out == nil {
		out = os.Stdout
	}
	c := &Console{deps: deps, in: in, out: out}
	c.commands = map[string]command{
		"items":           {"items", "List all items", c.listItems},
		"item":            {"item <id>", "Show one item", c.showItem},
		"add-item":        {"add-item", "Add a new item", c.addItem},
		"update-item":     {"update-item <id>", "Edit an item (blank keeps, - clears)", c.updateItem},
		"delete-item":     {"delete-item <id>", "Delete an item", c.deleteItem},
		"search":          {"search <term>", "Search items by name", c.search},
		"category":        {"category <name>", "List items in a category", c.category},
		"categories":      {"categories", "List categories", c.categories},
		"low-stock":       {"low-stock", "List items at or below minimum stock", c.lowStock},
		"suppliers":       {"suppliers", "List all suppliers", c.listSuppliers},
		"supplier":        {"supplier <id>", "Show one supplier", c.showSupplier},
		"add-supplier":    {"add-supplier", "Add a new supplier", c.addSupplier},
		"update-supplier": {"update-supplier <id>", "Edit a supplier (blank keeps)", c.updateSupplier},
		"delete-supplier": {"delete-supplier <id>", "Delete a supplier with no items", c.deleteSupplier},
		"report":          {"report <" + kindsUsage() + ">", "Show a report", c.report},
		"export":          {"export <report> <file.csv>", "Export a report to CSV", c.export},
	}
	return c
}

func kindsUsage() string {
	names := make([]string, len(ReportKinds))
	for i, k := range ReportKinds {
		names[i] = string(k)
	}
	return strings.Join(names, "|")
}

// Login asks for credentials until they match or the attempts run out.
func (c *Console) Login() error {
	for attempt := 1; attempt <= maxLoginAttempts; attempt++ {
		username, err := c.in.Prompt("Username: ")
		if err != nil {
			return err
		}
		password, err := c.in.Password("Password: ")
		if err != nil {
			return err
		}

		err = c.deps.Auth.Login(strings.TrimSpace(username), password)
		switch {
		case err == nil:
			fmt.Fprintln(c.out, "Login successful.")
			return nil
		case errors.Is(err, service.ErrMissingCredentials):
			fmt.Fprintln(c.out, "Please enter both username and password.")
		default:
			fmt.Fprintln(c.out, "Invalid username or password.")
		}
	}
	return service.ErrInvalidCredentials
}

// Run logs in and then serves commands until exit, EOF or interrupt.
func (c *Console) Run(ctx context.Context) error {
	if err := c.Login(); err != nil {
		if isQuit(err) {
			return nil
		}
		return err
	}

	fmt.Fprintln(c.out, "Warehouse Management System")
	fmt.Fprintln(c.out, "Type 'help' for commands, 'exit' to quit.")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, err := c.in.Prompt("warehouse> ")
		if err != nil {
			if isQuit(err) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		if err := c.Execute(ctx, line); err != nil {
			switch {
			case errors.Is(err, io.EOF):
				return nil
			case errors.Is(err, readline.ErrInterrupt):
				fmt.Fprintln(c.out, "Cancelled.")
			default:
				fmt.Fprintln(c.out, err)
			}
		}
	}
}

func isQuit(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt)
}

// Execute runs one command line. Returned errors are meant for the user.
func (c *Console) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name := strings.ToLower(fields[0])
	if name == "help" {
		c.printHelp()
		return nil
	}
	cmd, ok := c.commands[name]
	if !ok {
		return fmt.Errorf("Unknown command %q. Type 'help' for a list.", fields[0])
	}

	ctx, span := c.deps.Tracer.Start(ctx, "console."+name, trace.WithAttributes(
		attribute.String("session.id", c.deps.SessionID),
	))
	defer span.End()

	if err := cmd.run(ctx, fields[1:]); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (c *Console) printHelp() {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(c.out, "Commands:")
	for _, name := range names {
		cmd := c.commands[name]
		fmt.Fprintf(c.out, "  %-36s %s\n", cmd.usage, cmd.help)
	}
	fmt.Fprintf(c.out, "  %-36s %s\n", "help", "Show this help")
	fmt.Fprintf(c.out, "  %-36s %s\n", "exit", "Quit")
}

func (c *Console) call(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.deps.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.deps.Timeout)
}

func (c *Console) listItems(ctx context.Context, _ []string) error {
	ctx, cancel := c.call(ctx)
	defer cancel()
	c.printItems(c.deps.Inventory.GetAllItems(ctx))
	return nil
}

func (c *Console) printItems(items []domain.Item) {
	if len(items) == 0 {
		fmt.Fprintln(c.out, "No items found.")
		return
	}
	writeItems(c.out, items)
}

func (c *Console) showItem(ctx context.Context, args []string) error {
	id, err := idArg(args, "item <id>")
	if err != nil {
		return err
	}
	ctx, cancel := c.call(ctx)
	defer cancel()
	item := c.deps.Inventory.GetItemByID(ctx, id)
	if item == nil {
		return fmt.Errorf("Item %d not found.", id)
	}
	fmt.Fprintf(c.out, "ID:           %d\n", item.ID)
	fmt.Fprintf(c.out, "Name:         %s\n", item.Name)
	fmt.Fprintf(c.out, "Quantity:     %d\n", item.Quantity)
	fmt.Fprintf(c.out, "Location:     %s\n", item.Location)
	fmt.Fprintf(c.out, "Category:     %s\n", item.Category)
	fmt.Fprintf(c.out, "Description:  %s\n", item.Description)
	fmt.Fprintf(c.out, "Min stock:    %d\n", item.MinStockLevel)
	fmt.Fprintf(c.out, "Price:        %s\n", money(item.Price))
	fmt.Fprintf(c.out, "Supplier:     %s\n", supplierRef(item.SupplierID))
	fmt.Fprintf(c.out, "Status:       %s\n", domain.StatusOf(*item))
	return nil
}

func (c *Console) addItem(ctx context.Context, _ []string) error {
	var draft domain.ItemDraft
	if err := c.editItem(&draft, false); err != nil {
		return err
	}
	ctx, cancel := c.call(ctx)
	defer cancel()
	id, err := c.deps.Inventory.AddItem(ctx, draft)
	if err != nil {
		return writeFailure("add item", err)
	}
	fmt.Fprintf(c.out, "Item added successfully! (ID %d)\n", id)
	return nil
}

func (c *Console) updateItem(ctx context.Context, args []string) error {
	id, err := idArg(args, "update-item <id>")
	if err != nil {
		return err
	}
	lookupCtx, cancel := c.call(ctx)
	current := c.deps.Inventory.GetItemByID(lookupCtx, id)
	cancel()
	if current == nil {
		return fmt.Errorf("Item %d not found.", id)
	}

	draft := current.Draft()
	if err := c.editItem(&draft, true); err != nil {
		return err
	}

	ctx, cancel = c.call(ctx)
	defer cancel()
	updated := applyItemDraft(domain.Item{ID: id}, draft)
	if err := c.deps.Inventory.UpdateItem(ctx, updated); err != nil {
		return writeFailure("update item", err)
	}
	fmt.Fprintln(c.out, "Item updated successfully!")
	return nil
}

func applyItemDraft(item domain.Item, d domain.ItemDraft) domain.Item {
	item.Name = d.Name
	item.Quantity = d.Quantity
	item.Location = d.Location
	item.Category = d.Category
	item.Description = d.Description
	item.MinStockLevel = d.MinStockLevel
	item.Price = d.Price
	item.SupplierID = d.SupplierID
	return item
}

// editItem prompts for every item field. With keep set, a blank answer keeps
// the current value and "-" clears an optional one.
func (c *Console) editItem(d *domain.ItemDraft, keep bool) error {
	var err error
	if d.Name, err = c.askText("Name", d.Name, keep, false); err != nil {
		return err
	}
	if d.Quantity, err = c.askInt("Quantity", d.Quantity, keep); err != nil {
		return err
	}
	if d.Location, err = c.askText("Location", d.Location, keep, false); err != nil {
		return err
	}
	if d.Category, err = c.askText("Category", d.Category, keep, true); err != nil {
		return err
	}
	if d.Description, err = c.askText("Description", d.Description, keep, true); err != nil {
		return err
	}
	if d.MinStockLevel, err = c.askInt("Min stock level", d.MinStockLevel, keep); err != nil {
		return err
	}
	if d.Price, err = c.askPrice(d.Price, keep); err != nil {
		return err
	}
	d.SupplierID, err = c.askSupplierID(d.SupplierID, keep)
	return err
}

func (c *Console) ask(label, current string, keep bool) (string, error) {
	prompt := label + ": "
	if keep {
		prompt = fmt.Sprintf("%s [%s]: ", label, current)
	}
	answer, err := c.in.Prompt(prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func (c *Console) askText(label, current string, keep, optional bool) (string, error) {
	answer, err := c.ask(label, current, keep)
	if err != nil {
		return "", err
	}
	switch {
	case keep && answer == "":
		return current, nil
	case keep && optional && answer == "-":
		return "", nil
	}
	return answer, nil
}

func (c *Console) askInt(label string, current int, keep bool) (int, error) {
	answer, err := c.ask(label, strconv.Itoa(current), keep)
	if err != nil {
		return 0, err
	}
	if answer == "" {
		if keep {
			return current, nil
		}
		return 0, nil
	}
	n, err := strconv.Atoi(answer)
	if err != nil {
		return 0, errBadNumber
	}
	return n, nil
}

func (c *Console) askPrice(current decimal.Decimal, keep bool) (decimal.Decimal, error) {
	answer, err := c.ask("Price", current.StringFixed(2), keep)
	if err != nil {
		return decimal.Zero, err
	}
	if answer == "" {
		if keep {
			return current, nil
		}
		return decimal.Zero, nil
	}
	p, err := decimal.NewFromString(strings.TrimPrefix(answer, "$"))
	if err != nil {
		return decimal.Zero, errBadNumber
	}
	return p, nil
}

func (c *Console) askSupplierID(current *int64, keep bool) (*int64, error) {
	answer, err := c.ask("Supplier ID (blank for none)", supplierRef(current), keep)
	if err != nil {
		return nil, err
	}
	switch {
	case answer == "" && keep:
		return current, nil
	case answer == "" || answer == "-":
		return nil, nil
	}
	id, err := strconv.ParseInt(answer, 10, 64)
	if err != nil {
		return nil, errBadNumber
	}
	return &id, nil
}

func (c *Console) confirm(question string) (bool, error) {
	answer, err := c.in.Prompt(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (c *Console) deleteItem(ctx context.Context, args []string) error {
	id, err := idArg(args, "delete-item <id>")
	if err != nil {
		return err
	}
	ok, err := c.confirm(fmt.Sprintf("Are you sure you want to delete item %d?", id))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(c.out, "Cancelled.")
		return nil
	}
	ctx, cancel := c.call(ctx)
	defer cancel()
	if err := c.deps.Inventory.DeleteItem(ctx, id); err != nil {
		return writeFailure("delete item", err)
	}
	fmt.Fprintln(c.out, "Item deleted successfully!")
	return nil
}

func (c *Console) search(ctx context.Context, args []string) error {
	ctx, cancel := c.call(ctx)
	defer cancel()
	items := c.deps.Inventory.SearchItemsByName(ctx, strings.Join(args, " "))
	if len(items) == 0 {
		fmt.Fprintln(c.out, "No items found.")
		return nil
	}
	basic := make([]domain.BasicItem, len(items))
	for i, it := range items {
		basic[i] = it.Basic()
	}
	writeBasicItems(c.out, basic)
	return nil
}

func (c *Console) category(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: category <name>")
	}
	ctx, cancel := c.call(ctx)
	defer cancel()
	c.printItems(c.deps.Inventory.GetItemsByCategory(ctx, strings.Join(args, " ")))
	return nil
}

func (c *Console) categories(ctx context.Context, _ []string) error {
	ctx, cancel := c.call(ctx)
	defer cancel()
	names := c.deps.Inventory.GetAllCategories(ctx)
	if len(names) == 0 {
		fmt.Fprintln(c.out, "No categories found.")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(c.out, name)
	}
	return nil
}

func (c *Console) lowStock(ctx context.Context, _ []string) error {
	ctx, cancel := c.call(ctx)
	defer cancel()
	c.printItems(c.deps.Inventory.GetLowStockItems(ctx))
	return nil
}

func (c *Console) listSuppliers(ctx context.Context, _ []string) error {
	ctx, cancel := c.call(ctx)
	defer cancel()
	suppliers := c.deps.Suppliers.GetAllSuppliers(ctx)
	if len(suppliers) == 0 {
		fmt.Fprintln(c.out, "No suppliers found.")
		return nil
	}
	writeSuppliers(c.out, suppliers)
	return nil
}

func (c *Console) showSupplier(ctx context.Context, args []string) error {
	id, err := idArg(args, "supplier <id>")
	if err != nil {
		return err
	}
	ctx, cancel := c.call(ctx)
	defer cancel()
	s := c.deps.Suppliers.GetSupplierByID(ctx, id)
	if s == nil {
		return fmt.Errorf("Supplier %d not found.", id)
	}
	writeSuppliers(c.out, []domain.Supplier{*s})
	return nil
}

func (c *Console) editSupplier(d *domain.SupplierDraft, keep bool) error {
	var err error
	if d.Name, err = c.askText("Name", d.Name, keep, false); err != nil {
		return err
	}
	if d.Contact, err = c.askText("Contact", d.Contact, keep, false); err != nil {
		return err
	}
	d.Address, err = c.askText("Address", d.Address, keep, false)
	return err
}

func (c *Console) addSupplier(ctx context.Context, _ []string) error {
	var draft domain.SupplierDraft
	if err := c.editSupplier(&draft, false); err != nil {
		return err
	}
	ctx, cancel := c.call(ctx)
	defer cancel()
	id, err := c.deps.Suppliers.AddSupplier(ctx, draft)
	if err != nil {
		return writeFailure("add supplier", err)
	}
	fmt.Fprintf(c.out, "Supplier added successfully! (ID %d)\n", id)
	return nil
}

func (c *Console) updateSupplier(ctx context.Context, args []string) error {
	id, err := idArg(args, "update-supplier <id>")
	if err != nil {
		return err
	}
	lookupCtx, cancel := c.call(ctx)
	current := c.deps.Suppliers.GetSupplierByID(lookupCtx, id)
	cancel()
	if current == nil {
		return fmt.Errorf("Supplier %d not found.", id)
	}

	draft := current.Draft()
	if err := c.editSupplier(&draft, true); err != nil {
		return err
	}

	ctx, cancel = c.call(ctx)
	defer cancel()
	updated := domain.Supplier{ID: id, Name: draft.Name, Contact: draft.Contact, Address: draft.Address}
	if err := c.deps.Suppliers.UpdateSupplier(ctx, updated); err != nil {
		return writeFailure("update supplier", err)
	}
	fmt.Fprintln(c.out, "Supplier updated successfully!")
	return nil
}

func (c *Console) deleteSupplier(ctx context.Context, args []string) error {
	id, err := idArg(args, "delete-supplier <id>")
	if err != nil {
		return err
	}
	ok, err := c.confirm(fmt.Sprintf("Are you sure you want to delete supplier %d?", id))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(c.out, "Cancelled.")
		return nil
	}
	ctx, cancel := c.call(ctx)
	defer cancel()
	if err := c.deps.Suppliers.DeleteSupplier(ctx, id); err != nil {
		return writeFailure("delete supplier", err)
	}
	fmt.Fprintln(c.out, "Supplier deleted successfully!")
	return nil
}

func (c *Console) report(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: report <%s>", kindsUsage())
	}
	kind, err := ParseReportKind(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := c.call(ctx)
	defer cancel()
	return WriteReport(ctx, c.out, c.deps.Reports, kind, FormatTable)
}

func (c *Console) export(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: export <report> <file.csv>")
	}
	kind, err := ParseReportKind(args[0])
	if err != nil {
		return err
	}

	f, err := os.Create(args[1])
	if err != nil {
		return fmt.Errorf("Failed to export report: %w", err)
	}
	ctx, cancel := c.call(ctx)
	defer cancel()
	err = WriteReport(ctx, f, c.deps.Reports, kind, FormatCSV)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		c.deps.Logger.Error("report export failed", zap.String("file", args[1]), zap.Error(err))
		return fmt.Errorf("Failed to export report: %w", err)
	}
	fmt.Fprintf(c.out, "Report exported to %s\n", args[1])
	return nil
}

func idArg(args []string, usage string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("usage: " + usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("Invalid ID %q.", args[0])
	}
	return id, nil
}

// writeFailure turns a service write error into a user-facing message.
func writeFailure(action string, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fmt.Errorf("Invalid input: %v", err)
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("Not found: %v", err)
	case errors.Is(err, domain.ErrSupplierInUse):
		return fmt.Errorf("Cannot delete: %v", err)
	}
	return fmt.Errorf("Failed to %s. Please try again.", action)
}
