package memstore

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
)

var errDuplicate = errors.New("memstore: duplicate key")

type petRepo struct{ t *tx }

func (r petRepo) Get(_ context.Context, id int64) (*model.Pet, error) {
	p, ok := r.t.st.pets[id]
	if !ok {
		return nil, errs.NotFoundf("pet %d", id)
	}
	return p.Clone(), nil
}

func (r petRepo) GetForUpdate(ctx context.Context, id int64) (*model.Pet, error) {
	return r.Get(ctx, id)
}

func (r petRepo) Create(_ context.Context, pet *model.Pet) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.pets[pet.ID]; ok {
		return errors.Wrapf(errDuplicate, "pet %d", pet.ID)
	}
	pet.Version = 1
	r.t.st.pets[pet.ID] = *pet.Clone()
	return nil
}

func (r petRepo) Update(_ context.Context, pet *model.Pet) error {
	if err := r.t.write(); err != nil {
		return err
	}
	cur, ok := r.t.st.pets[pet.ID]
	if !ok {
		return errs.NotFoundf("pet %d", pet.ID)
	}
	if cur.Version != pet.Version {
		return errors.Wrapf(errs.ErrConcurrentUpdate, "pet %d version %d != %d", pet.ID, pet.Version, cur.Version)
	}
	pet.Version++
	r.t.st.pets[pet.ID] = *pet.Clone()
	return nil
}

type walletRepo struct{ t *tx }

func (r walletRepo) Get(_ context.Context, ownerID int64) (*model.Wallet, error) {
	w, ok := r.t.st.wallets[ownerID]
	if !ok {
		return nil, errs.NotFoundf("wallet of owner %d", ownerID)
	}
	return &w, nil
}

func (r walletRepo) GetForUpdate(ctx context.Context, ownerID int64) (*model.Wallet, error) {
	return r.Get(ctx, ownerID)
}

func (r walletRepo) Create(_ context.Context, wallet *model.Wallet) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.wallets[wallet.OwnerID]; ok {
		return nil
	}
	wallet.Version = 1
	r.t.st.wallets[wallet.OwnerID] = *wallet
	return nil
}

func (r walletRepo) Update(_ context.Context, wallet *model.Wallet) error {
	if err := r.t.write(); err != nil {
		return err
	}
	cur, ok := r.t.st.wallets[wallet.OwnerID]
	if !ok {
		return errs.NotFoundf("wallet of owner %d", wallet.OwnerID)
	}
	if cur.Version != wallet.Version {
		return errors.Wrapf(errs.ErrConcurrentUpdate, "wallet %d version %d != %d", wallet.OwnerID, wallet.Version, cur.Version)
	}
	wallet.Version++
	r.t.st.wallets[wallet.OwnerID] = *wallet
	return nil
}

type ledgerRepo struct{ t *tx }

func (r ledgerRepo) Append(_ context.Context, entry *model.LedgerEntry) error {
	if err := r.t.write(); err != nil {
		return err
	}
	r.t.st.ledger = append(r.t.st.ledger, *entry)
	return nil
}

func (r ledgerRepo) List(_ context.Context, ownerID int64, limit, offset int) ([]*model.LedgerEntry, error) {
	out := make([]*model.LedgerEntry, 0)
	skipped := 0
	for i := len(r.t.st.ledger) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		e := r.t.st.ledger[i]
		if e.OwnerID != ownerID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, &e)
	}
	return out, nil
}

type ruleRepo struct{ t *tx }

func (r ruleRepo) Get(_ context.Context, interactionType string) (*model.InteractionRule, error) {
	rule, ok := r.t.st.rules[interactionType]
	if !ok {
		return nil, errs.NotFoundf("rule %q", interactionType)
	}
	return &rule, nil
}

func (r ruleRepo) List(_ context.Context, activeOnly bool) ([]*model.InteractionRule, error) {
	out := make([]*model.InteractionRule, 0, len(r.t.st.rules))
	for _, rule := range r.t.st.rules {
		if activeOnly && !rule.IsActive {
			continue
		}
		out = append(out, &rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InteractionType < out[j].InteractionType })
	return out, nil
}

func (r ruleRepo) Create(_ context.Context, rule *model.InteractionRule) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.rules[rule.InteractionType]; ok {
		return errors.Wrapf(errDuplicate, "rule %q", rule.InteractionType)
	}
	r.t.st.rules[rule.InteractionType] = *rule
	return nil
}

func (r ruleRepo) Update(_ context.Context, rule *model.InteractionRule) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.rules[rule.InteractionType]; !ok {
		return errs.NotFoundf("rule %q", rule.InteractionType)
	}
	r.t.st.rules[rule.InteractionType] = *rule
	return nil
}

func (r ruleRepo) Delete(_ context.Context, interactionType string) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.rules[interactionType]; !ok {
		return errs.NotFoundf("rule %q", interactionType)
	}
	delete(r.t.st.rules, interactionType)
	return nil
}

type tierRepo struct{ t *tx }

func (r tierRepo) Load(_ context.Context) (int64, []model.LevelUpTier, error) {
	tiers := make([]model.LevelUpTier, len(r.t.st.tiers))
	copy(tiers, r.t.st.tiers)
	return r.t.st.tierVersion, tiers, nil
}

func (r tierRepo) Replace(_ context.Context, tiers []model.LevelUpTier) (int64, error) {
	if err := r.t.write(); err != nil {
		return 0, err
	}
	r.t.st.tiers = make([]model.LevelUpTier, len(tiers))
	copy(r.t.st.tiers, tiers)
	r.t.st.tierVersion++
	return r.t.st.tierVersion, nil
}

type historyRepo struct{ t *tx }

func (r historyRepo) Append(_ context.Context, record *model.InteractionRecord) error {
	if err := r.t.write(); err != nil {
		return err
	}
	r.t.st.history = append(r.t.st.history, *record)
	key := historyKey{petID: record.PetID, interactionType: record.InteractionType}
	if cur, ok := r.t.st.latest[key]; !ok || !record.OccurredAt.Before(cur.OccurredAt) {
		r.t.st.latest[key] = *record
	}
	return nil
}

func (r historyRepo) Latest(_ context.Context, petID int64, interactionType string) (*model.InteractionRecord, error) {
	rec, ok := r.t.st.latest[historyKey{petID: petID, interactionType: interactionType}]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

type playRepo struct{ t *tx }

func (r playRepo) Get(_ context.Context, id int64) (*model.GamePlay, error) {
	p, ok := r.t.st.plays[id]
	if !ok {
		return nil, errs.NotFoundf("play %d", id)
	}
	return &p, nil
}

func (r playRepo) GetForUpdate(ctx context.Context, id int64) (*model.GamePlay, error) {
	return r.Get(ctx, id)
}

func (r playRepo) Create(_ context.Context, play *model.GamePlay) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.plays[play.ID]; ok {
		return errors.Wrapf(errDuplicate, "play %d", play.ID)
	}
	r.t.st.plays[play.ID] = *play
	return nil
}

func (r playRepo) Update(_ context.Context, play *model.GamePlay) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.plays[play.ID]; !ok {
		return errs.NotFoundf("play %d", play.ID)
	}
	r.t.st.plays[play.ID] = *play
	return nil
}

type colorRepo struct{ t *tx }

func (r colorRepo) Get(_ context.Context, id int64) (*model.ColorOption, error) {
	o, ok := r.t.st.colors[id]
	if !ok {
		return nil, errs.NotFoundf("color option %d", id)
	}
	return &o, nil
}

func (r colorRepo) List(_ context.Context, kind model.ColorKind, activeOnly bool) ([]*model.ColorOption, error) {
	out := make([]*model.ColorOption, 0, len(r.t.st.colors))
	for _, o := range r.t.st.colors {
		if (kind != "" && o.Kind != kind) || (activeOnly && !o.IsActive) {
			continue
		}
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r colorRepo) Create(_ context.Context, opt *model.ColorOption) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.colors[opt.ID]; ok {
		return errors.Wrapf(errDuplicate, "color option %d", opt.ID)
	}
	r.t.st.colors[opt.ID] = *opt
	return nil
}

type signInRepo struct{ t *tx }

func (r signInRepo) Latest(_ context.Context, ownerID int64) (*model.SignInRecord, error) {
	records := r.t.st.signIns[ownerID]
	if len(records) == 0 {
		return nil, nil
	}
	rec := records[len(records)-1]
	return &rec, nil
}

func (r signInRepo) Append(_ context.Context, record *model.SignInRecord) error {
	if err := r.t.write(); err != nil {
		return err
	}
	records := r.t.st.signIns[record.OwnerID]
	r.t.st.signIns[record.OwnerID] = append(records[:len(records):len(records)], *record)
	return nil
}
