// Package supports inspects and changes the LBC we deposit on claims.
package supports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"alexandria/internal/lbrynet"
	"alexandria/internal/search"
)

var (
	// ErrNoSupports is returned when the wallet has no supports.
	ErrNoSupports = errors.New("no supports found")
	// ErrNotInvalid is returned when a claim is not among the invalid supports.
	ErrNotInvalid = errors.New("claim not found among the invalid claims")
)

// Daemon is the part of the lbrynet API the support manager needs.
type Daemon interface {
	search.Daemon
	SupportList(ctx context.Context, params lbrynet.SupportListParams) (lbrynet.SupportPage, error)
	SupportCreate(ctx context.Context, claimID string, amount float64) (lbrynet.Transaction, error)
	SupportAbandon(ctx context.Context, claimID string, keep float64) (lbrynet.Transaction, error)
}

// Manager reads and updates supports.
type Manager struct {
	daemon Daemon
	search *search.Service
	logger *slog.Logger
}

// New creates a support manager.
func New(daemon Daemon, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{daemon: daemon, search: search.New(daemon, logger), logger: logger}
}

// Entry is one of our supports with the claim it resolves to, if any.
type Entry struct {
	lbrynet.Support
	Resolved *lbrynet.Claim `json:"resolved,omitempty" yaml:"resolved,omitempty"`
}

// Valid reports whether the supported claim still resolves.
func (e Entry) Valid() bool {
	return e.Resolved != nil
}

// Inventory groups our supports by whether their claims still resolve.
type Inventory struct {
	All     []Entry `json:"all_supports" yaml:"all_supports"`
	Valid   []Entry `json:"valid_supports" yaml:"valid_supports"`
	Invalid []Entry `json:"invalid_supports" yaml:"invalid_supports"`
}

// All lists every support in the wallet and resolves each claim.
func (m *Manager) All(ctx context.Context, workers int) (Inventory, error) {
	page, err := m.daemon.SupportList(ctx, lbrynet.SupportListParams{PageSize: lbrynet.MaxPageSize})
	if err != nil {
		return Inventory{}, err
	}
	if len(page.Items) == 0 {
		return Inventory{}, ErrNoSupports
	}

	ids := make([]string, len(page.Items))
	for i, s := range page.Items {
		ids[i] = s.ClaimID
	}
	entries := make([]Entry, len(page.Items))
	for i, s := range page.Items {
		entries[i] = Entry{Support: s}
	}
	err = m.search.ForEachClaimID(ctx, ids, workers, func(i int, c *lbrynet.Claim) {
		entries[i].Resolved = c
	})
	if err != nil {
		return Inventory{}, err
	}

	inv := Inventory{All: entries}
	for _, e := range entries {
		if e.Valid() {
			inv.Valid = append(inv.Valid, e)
		} else {
			inv.Invalid = append(inv.Invalid, e)
		}
	}
	m.logger.Debug("supports", "all", len(inv.All), "valid", len(inv.Valid), "invalid", len(inv.Invalid))
	return inv, nil
}

// Result describes the support on one claim before and after an operation.
type Result struct {
	CanonicalURL string  `json:"canonical_url,omitempty" yaml:"canonical_url,omitempty"`
	ClaimID      string  `json:"claim_id" yaml:"claim_id"`
	Name         string  `json:"name" yaml:"name"`
	Existing     float64 `json:"existing_support" yaml:"existing_support"`
	Base         float64 `json:"base_support" yaml:"base_support"`
	Old          float64 `json:"old_support" yaml:"old_support"`
	New          float64 `json:"new_support" yaml:"new_support"`

	// Set by Target.
	Target  *float64 `json:"target,omitempty" yaml:"target,omitempty"`
	MustAdd *float64 `json:"must_add,omitempty" yaml:"must_add,omitempty"`

	Applied     float64 `json:"applied" yaml:"applied"`
	TotalInput  float64 `json:"total_input" yaml:"total_input"`
	TotalOutput float64 `json:"total_output" yaml:"total_output"`
	TotalFee    float64 `json:"total_fee" yaml:"total_fee"`
	Txid        string  `json:"txid,omitempty" yaml:"txid,omitempty"`
	// Sent is false when no transaction was needed.
	Sent bool `json:"sent" yaml:"sent"`
}

func (r *Result) apply(tx lbrynet.Transaction, applied float64) {
	r.Sent = true
	r.Applied = applied
	r.TotalInput = tx.TotalInput.Float()
	r.TotalOutput = tx.TotalOutput.Float()
	r.TotalFee = tx.TotalFee.Float()
	r.Txid = tx.Txid
}

// Report renders the result as aligned text lines.
func (r Result) Report() []string {
	var out []string
	if r.CanonicalURL != "" {
		out = append(out, "canonical_url: "+r.CanonicalURL)
	} else {
		out = append(out, "claim_name: "+r.Name)
	}
	out = append(out,
		"claim_id: "+r.ClaimID,
		amountLine("Existing support:", r.Existing),
		amountLine("Base support:", r.Base),
		amountLine("Old support:", r.Old),
	)
	if r.Target != nil {
		out = append(out, "", amountLine("Target:", *r.Target))
		if r.MustAdd != nil {
			out = append(out, amountLine("Must add:", *r.MustAdd))
		}
		out = append(out, amountLine("New support:", r.New))
	} else {
		out = append(out, amountLine("New support:", r.New))
	}
	txid := r.Txid
	if txid == "" {
		txid = "None"
	}
	out = append(out, "",
		amountLine("Applied:", r.Applied),
		amountLine("total_input:", r.TotalInput),
		amountLine("total_output:", r.TotalOutput),
		amountLine("total_fee:", r.TotalFee),
		"txid: "+txid,
	)
	return out
}

func amountLine(label string, v float64) string {
	return fmt.Sprintf("%-17s %14.8f", label, v)
}

// Base computes the support a claim has without ours.
func (m *Manager) Base(ctx context.Context, q search.Query) (Result, error) {
	q.Offline = false
	item, err := m.search.Item(ctx, q)
	if err != nil {
		return Result{}, err
	}

	existing := item.Amount.Float() + item.Meta.SupportAmount.Float()
	page, err := m.daemon.SupportList(ctx, lbrynet.SupportListParams{ClaimID: item.ClaimID})
	if err != nil {
		return Result{}, err
	}
	var old float64
	for _, s := range page.Items {
		old += s.Amount.Float()
	}

	return Result{
		CanonicalURL: item.CanonicalURL,
		ClaimID:      item.ClaimID,
		Name:         item.Name,
		Existing:     existing,
		Base:         existing - old,
		Old:          old,
	}, nil
}

// Create deposits amount on the claim in addition to any previous support.
// The sign of amount is ignored.
func (m *Manager) Create(ctx context.Context, q search.Query, amount float64) (Result, error) {
	res, err := m.Base(ctx, q)
	if err != nil {
		return Result{}, err
	}
	amount = math.Abs(amount)
	tx, err := m.daemon.SupportCreate(ctx, res.ClaimID, amount)
	if err != nil {
		return Result{}, fmt.Errorf("create support of %s on %s: %w", lbrynet.FormatAmount(amount), res.ClaimID, err)
	}
	res.New = amount
	res.apply(tx, amount)
	m.logger.Info("support created", "claim_id", res.ClaimID, "amount", amount, "txid", res.Txid)
	return res, nil
}

// Abandon removes our support from the claim, keeping keep LBC.
func (m *Manager) Abandon(ctx context.Context, q search.Query, keep float64) (Result, error) {
	res, err := m.Base(ctx, q)
	if err != nil {
		return Result{}, err
	}
	if err := m.abandon(ctx, &res, keep); err != nil {
		return Result{}, err
	}
	return res, nil
}

// AbandonInvalidRequest selects an invalid claim by a fragment of its
// claim id or name.
type AbandonInvalidRequest struct {
	// Invalids is a previously computed list; when nil All is called.
	Invalids []Entry
	ClaimID  string
	Name     string
	Keep     float64
	Workers  int
}

// AbandonInvalid removes our support from a claim that no longer resolves.
// Such a claim has no base support, so all of its support is ours.
func (m *Manager) AbandonInvalid(ctx context.Context, req AbandonInvalidRequest) (Result, error) {
	if req.ClaimID == "" && req.Name == "" {
		return Result{}, fmt.Errorf("%w: claim_id or name is required", search.ErrInvalidQuery)
	}
	invalids := req.Invalids
	if invalids == nil {
		inv, err := m.All(ctx, req.Workers)
		if err != nil {
			return Result{}, err
		}
		invalids = inv.Invalid
	}

	var (
		res   Result
		found bool
	)
	for _, e := range invalids {
		if (req.ClaimID != "" && strings.Contains(e.ClaimID, req.ClaimID)) ||
			(req.Name != "" && strings.Contains(e.Name, req.Name)) {
			amount := e.Amount.Float()
			res = Result{ClaimID: e.ClaimID, Name: e.Name, Existing: amount, Old: amount}
			found = true
		}
	}
	if !found {
		return Result{}, fmt.Errorf("%w: claim_id=%s name=%s", ErrNotInvalid, req.ClaimID, req.Name)
	}
	if err := m.abandon(ctx, &res, req.Keep); err != nil {
		return Result{}, err
	}
	return res, nil
}

func (m *Manager) abandon(ctx context.Context, res *Result, keep float64) error {
	tx, err := m.daemon.SupportAbandon(ctx, res.ClaimID, keep)
	if err != nil {
		return fmt.Errorf("abandon support on %s (keep %s): %w", res.ClaimID, lbrynet.FormatAmount(keep), err)
	}
	res.New = keep
	res.apply(tx, keep)
	m.logger.Info("support abandoned", "claim_id", res.ClaimID, "keep", keep, "txid", res.Txid)
	return nil
}

// Plan is the change needed to reach a target total support.
type Plan struct {
	MustAdd float64
	New     float64
}

// PlanTarget computes how our support must change so that the claim's
// total support reaches target. A target below the base support cannot be
// reached, so our support is removed entirely.
func PlanTarget(target, existing, base, old float64) Plan {
	target = math.Abs(target)
	switch {
	case target > base:
		mustAdd := target - existing
		return Plan{MustAdd: mustAdd, New: old + mustAdd}
	case target < base && old != 0:
		return Plan{MustAdd: -old}
	default:
		return Plan{}
	}
}

// Target adjusts our support so the claim's total support equals target.
// A transaction is only sent when our support changes.
func (m *Manager) Target(ctx context.Context, q search.Query, target float64) (Result, error) {
	res, err := m.Base(ctx, q)
	if err != nil {
		return Result{}, err
	}
	target = math.Abs(target)
	plan := PlanTarget(target, res.Existing, res.Base, res.Old)
	res.Target = &target
	res.MustAdd = &plan.MustAdd
	res.New = plan.New

	if plan.New == res.Old {
		m.logger.Debug("support already at target", "claim_id", res.ClaimID, "target", target)
		return res, nil
	}

	var tx lbrynet.Transaction
	if res.Old == 0 && plan.New > 0 {
		tx, err = m.daemon.SupportCreate(ctx, res.ClaimID, plan.New)
	} else {
		tx, err = m.daemon.SupportAbandon(ctx, res.ClaimID, plan.New)
	}
	if err != nil {
		return Result{}, fmt.Errorf("set support on %s to %s: %w", res.ClaimID, lbrynet.FormatAmount(plan.New), err)
	}
	res.apply(tx, plan.New)
	m.logger.Info("support targeted", "claim_id", res.ClaimID, "target", target, "new_support", plan.New, "txid", res.Txid)
	return res, nil
}
