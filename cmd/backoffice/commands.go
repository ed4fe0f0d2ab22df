package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/souq-backoffice/internal/accounts"
	"github.com/angelmondragon/souq-backoffice/internal/bootstrap"
	"github.com/angelmondragon/souq-backoffice/internal/orders"
	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/souq-backoffice/pkg/errors"
	"github.com/angelmondragon/souq-backoffice/pkg/logger"
	"github.com/angelmondragon/souq-backoffice/pkg/metrics"
	"github.com/angelmondragon/souq-backoffice/pkg/pagination"
)

type commandFunc func(ctx context.Context, fs *flag.FlagSet, args []string) (any, error)

type command struct {
	usage string
	run   commandFunc
}

// RunnerParams wires the runner. Services and Out are required; a nil Logger
// or Metrics disables that output.
type RunnerParams struct {
	Services *bootstrap.Container
	Logger   *logger.Logger
	Metrics  *metrics.CommandMetrics
	Out      io.Writer
}

// Runner dispatches back-office subcommands and writes their result as JSON.
type Runner struct {
	services *bootstrap.Container
	logg     *logger.Logger
	metrics  *metrics.CommandMetrics
	out      io.Writer
	commands map[string]command
}

// NewRunner builds a runner with every back-office subcommand registered.
func NewRunner(params RunnerParams) (*Runner, error) {
	if params.Services == nil {
		return nil, fmt.Errorf("services container required")
	}
	if params.Out == nil {
		return nil, fmt.Errorf("output writer required")
	}
	r := &Runner{
		services: params.Services,
		logg:     params.Logger,
		metrics:  params.Metrics,
		out:      params.Out,
	}
	r.commands = map[string]command{
		"seed-payment-methods":      {"create the default payment methods", r.seedPaymentMethods},
		"available-payment-methods": {"list active methods for -amount", r.availablePaymentMethods},
		"create-superuser":          {"create a staff superuser (-email, -password)", r.createSuperuser},
		"deactivate-user":           {"deactivate the user -id", r.deactivateUser},
		"delete-user":               {"delete the user -id", r.deleteUser},
		"list-orders":               {"list orders (-status, -paid, -type, -search, -limit, -cursor)", r.listOrders},
		"set-order-status":          {"bulk update order status (-status, -ids)", r.setOrderStatus},
		"recalculate-order":         {"recompute totals for the order -id", r.recalculateOrder},
		"list-quick-orders":         {"list quick orders (-status, -city, -search, -limit, -cursor)", r.listQuickOrders},
		"set-quick-order-status":    {"bulk update quick order status (-status, -ids)", r.setQuickOrderStatus},
		"mark-paid":                 {"capture the payment -id (-transaction)", r.markPaid},
	}
	return r, nil
}

// Run executes args[0] with the remaining args as its flags.
func (r *Runner) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "command is required").WithDetails(r.Usage())
	}
	name := args[0]
	cmd, ok := r.commands[name]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown command %q", name)).WithDetails(r.Usage())
	}

	ctx = r.logg.WithCommand(ctx, name)
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	started := time.Now()
	result, err := cmd.run(ctx, fs, args[1:])
	code := ""
	if err != nil {
		code = string(pkgerrors.CodeOf(err))
	}
	r.metrics.Observe(name, time.Since(started), code)
	if err != nil {
		r.logg.Warn(ctx, fmt.Sprintf("command failed: %v", err))
		return err
	}
	r.logg.Info(ctx, "command completed")

	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// Usage lists every command with its one-line description.
func (r *Runner) Usage() []string {
	lines := make([]string, 0, len(r.commands))
	for name, cmd := range r.commands {
		lines = append(lines, name+": "+cmd.usage)
	}
	sort.Strings(lines)
	return lines
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid flags")
	}
	return nil
}

func parseID(raw, name string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("-%s is required", name))
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("-%s must be a uuid", name))
	}
	return id, nil
}

func parseIDs(raw string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := parseID(part, "ids")
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "-ids is required")
	}
	return ids, nil
}

func invalidFlag(name string, err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid -%s", name))
}

func (r *Runner) seedPaymentMethods(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	if err := parseFlags(fs, args); err != nil {
		return nil, err
	}
	created, err := r.services.Payments.SeedDefaultMethods(ctx)
	if err != nil {
		return nil, err
	}
	if created == nil {
		created = []string{}
	}
	return map[string]any{"created": created}, nil
}

type methodView struct {
	ID       uuid.UUID               `json:"id"`
	Code     string                  `json:"code"`
	Name     string                  `json:"name"`
	Type     enums.PaymentMethodType `json:"type"`
	ExtraFee decimal.Decimal         `json:"extra_fee"`
}

func (r *Runner) availablePaymentMethods(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	amount := fs.String("amount", "0", "order amount")
	if err := parseFlags(fs, args); err != nil {
		return nil, err
	}
	value, err := decimal.NewFromString(*amount)
	if err != nil {
		return nil, invalidFlag("amount", err)
	}
	methods, err := r.services.Payments.ListAvailableMethods(ctx, value)
	if err != nil {
		return nil, err
	}
	views := make([]methodView, 0, len(methods))
	for _, m := range methods {
		views = append(views, methodView{ID: m.ID, Code: m.Code, Name: m.Name, Type: m.Type, ExtraFee: m.ExtraFee})
	}
	return views, nil
}

func (r *Runner) createSuperuser(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	email := fs.String("email", "", "superuser email")
	password := fs.String("password", "", "superuser password")
	if err := parseFlags(fs, args); err != nil {
		return nil, err
	}
	user, err := r.services.Accounts.CreateSuperuser(ctx, accounts.CreateUserInput{Email: *email, Password: *password})
	if err != nil {
		return nil, err
	}
	return map[string]any{"id": user.ID, "email": user.Email}, nil
}

func (r *Runner) deactivateUser(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	raw := fs.String("id", "", "user id")
	if err := parseFlags(fs, args); err != nil {
		return nil, err
	}
	id, err := parseID(*raw, "id")
	if err != nil {
		return nil, err
	}
	if err := r.services.Accounts.Deactivate(ctx, id); err != nil {
		return nil, err
	}
	return map[string]any{"id": id, "is_active": false}, nil
}

func (r *Runner) deleteUser(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	raw := fs.String("id", "", "user id")
	if err := parseFlags(fs, args); err != nil {
		return nil, err
	}
	id, err := parseID(*raw, "id")
	if err != nil {
		return nil, err
	}
	if err := r.services.Accounts.DeleteUser(ctx, id); err != nil {
		return nil, err
	}
	return map[string]any{"id": id, "deleted": true}, nil
}

type orderView struct {
	ID            uuid.UUID         `json:"id"`
	OrderNumber   string            `json:"order_number"`
	OrderType     enums.OrderType   `json:"order_type"`
	Status        enums.OrderStatus `json:"status"`
	PaymentStatus bool              `json:"payment_status"`
	CustomerName  string            `json:"customer_name"`
	CustomerPhone string            `json:"customer_phone"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	TaxAmount     decimal.Decimal   `json:"tax_amount"`
	Total         decimal.Decimal   `json:"total"`
	CreatedAt     time.Time         `json:"created_at"`
}

func newOrderView(o models.Order) orderView {
	return orderView{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		OrderType:     o.OrderType,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Subtotal:      o.Subtotal,
		TaxAmount:     o.TaxAmount,
		Total:         o.Total,
		CreatedAt:     o.CreatedAt,
	}
}

type listResult[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

func (r *Runner) listOrders(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	status := fs.String("status", "", "order status")
	paid := fs.String("paid", "", "payment status (true|false)")
	orderType := fs.String("type", "", "order type")
	search := fs.String("search", "", "order number, customer name, email or phone")
	limit := fs.Int("limit", pagination.DefaultLimit, "page size")
	cursor := fs.String("cursor", "", "cursor from a previous page")
	if err := parseFlags(fs, args); err != nil {
		return nil, err
	}

	filters := orders.OrderFilters{Search: *search}
	if *status != "" {
		parsed, err := enums.ParseOrderStatus(*status)
		if err != nil {
			return nil, invalidFlag("status", err)
		}
		filters.Status = &parsed
	}
	if *paid != "" {
		parsed, err := strconv.ParseBool(*paid)
		if err != nil {
			return nil, invalidFlag("paid", err)
		}
		filters.PaymentStatus = &parsed
	}
	if *orderType != "" {
		parsed, err := enums.ParseOrderType(*orderType)
		if err != nil {
			return nil, invalidFlag("type", err)
		}
		filters.OrderType = &parsed
	}

	page, err := r.services.Orders.ListOrders(ctx, filters, pagination.Params{Limit: *limit, Cursor: *cursor})
	if err != nil {
		return nil, err
	}
	out := listResult[orderView]{Items: make([]orderView, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, o := range page.Items {
		out.Items = append(out.Items, newOrderView(o))
	}
	return out, nil
}

type bulkResult struct {
	Requested int    `json:"requested"`
	Updated   int    `json:"updated"`
	Status    string `json:"status"`
}

func (r *Runner) setOrderStatus(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	status := fs.String("status", "", "target status (confirmed|processing|shipped)")
	rawIDs := fs.String("ids", "", "comma separated order ids")
	if err := parseFlags(fs, args); err != nil {
		return nil, err
	}
	parsed, err := enums.ParseOrderStatus(*status)
	if err != nil {
		return nil, invalidFlag("status", err)
	}
	ids, err := parseIDs(*rawIDs)
	if err != nil {
		return nil, err
	}
	updated, err := r.services.Orders.BulkSetStatus(ctx, ids, parsed)
	if err != nil {
		return nil, err
	}
	return bulkResult{Requested: len(ids), Updated: updated, Status: parsed.String()}, nil
}

func (r *Runner) recalculateOrder(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	raw := fs.String("id", "", "order id")
	if err := parseFlags(fs, args); err != nil {
		return nil, err
	}
	id, err := parseID(*raw, "id")
	if err != nil {
		return nil, err
	}
	order, err := r.services.Orders.CalculateTotals(ctx, id)
	if err != nil {
		return nil, err
	}
	return newOrderView(*order), nil
}

type quickOrderView struct {
	ID          uuid.UUID              `json:"id"`
	Name        string                 `json:"name"`
	Phone       string                 `json:"phone"`
	City        string                 `json:"city"`
	ProductName string                 `json:"product_name,omitempty"`
	Quantity    int                    `json:"quantity"`
	Status      enums.QuickOrderStatus `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
}

func (r *Runner) listQuickOrders(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	status := fs.String("status", "", "quick order status")
	city := fs.String("city", "", "city")
	search := fs.String("search", "", "name, phone, email or product name")
	limit := fs.Int("limit", pagination.DefaultLimit, "page size")
	cursor := fs.String("cursor", "", "cursor from a previous page")
	if err := parseFlags(fs, args); err != nil {
		return nil, err
	}

	filters := orders.QuickOrderFilters{City: *city, Search: *search}
	if *status != "" {
		parsed, err := enums.ParseQuickOrderStatus(*status)
		if err != nil {
			return nil, invalidFlag("status", err)
		}
		filters.Status = &parsed
	}

	page, err := r.services.Orders.ListQuickOrders(ctx, filters, pagination.Params{Limit: *limit, Cursor: *cursor})
	if err != nil {
		return nil, err
	}
	out := listResult[quickOrderView]{Items: make([]quickOrderView, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, q := range page.Items {
		view := quickOrderView{
			ID:        q.ID,
			Name:      q.Name,
			Phone:     q.Phone,
			City:      q.City,
			Quantity:  q.Quantity,
			Status:    q.Status,
			CreatedAt: q.CreatedAt,
		}
		if q.Product != nil {
			view.ProductName = q.Product.Name
		}
		out.Items = append(out.Items, view)
	}
	return out, nil
}

func (r *Runner) setQuickOrderStatus(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	status := fs.String("status", "", "target status (confirmed|processing)")
	rawIDs := fs.String("ids", "", "comma separated quick order ids")
	if err := parseFlags(fs, args); err != nil {
		return nil, err
	}
	parsed, err := enums.ParseQuickOrderStatus(*status)
	if err != nil {
		return nil, invalidFlag("status", err)
	}
	ids, err := parseIDs(*rawIDs)
	if err != nil {
		return nil, err
	}
	updated, err := r.services.Orders.BulkSetQuickOrderStatus(ctx, ids, parsed)
	if err != nil {
		return nil, err
	}
	return bulkResult{Requested: len(ids), Updated: updated, Status: parsed.String()}, nil
}

func (r *Runner) markPaid(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	raw := fs.String("id", "", "payment id")
	transaction := fs.String("transaction", "", "gateway transaction id")
	if err := parseFlags(fs, args); err != nil {
		return nil, err
	}
	id, err := parseID(*raw, "id")
	if err != nil {
		return nil, err
	}
	payment, err := r.services.Payments.MarkAsPaid(ctx, id, *transaction, map[string]any{"source": "backoffice"})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":             payment.ID,
		"order_id":       payment.OrderID,
		"status":         payment.Status,
		"transaction_id": payment.TransactionID,
		"amount":         payment.Amount,
		"currency":       payment.Currency,
	}, nil
}

// exitCode maps a command error onto the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	return pkgerrors.MetadataFor(pkgerrors.CodeOf(err)).ExitCode
}
