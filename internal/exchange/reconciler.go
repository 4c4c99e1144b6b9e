// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package exchange

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/phrasehub/phrasehub/internal/access"
	"github.com/phrasehub/phrasehub/internal/audit"
	"github.com/phrasehub/phrasehub/internal/catalog"
	"github.com/phrasehub/phrasehub/internal/identity"
)

// ErrImportConflict is returned when a constraint violation aborts an
// import. Nothing from the import remains committed.
var ErrImportConflict = errors.New("import conflict")

// ApplyResult counts the writes an import committed.
type ApplyResult struct {
	KeysWritten         int `json:"keysWritten"`
	TranslationsWritten int `json:"translationsWritten"`
}

// ExportOptions narrow an export.
type ExportOptions struct {
	// Locales limits exported translations; empty means all.
	Locales []string
	// Status limits exported keys; empty means all.
	Status catalog.Status
	// IncludeEmptyKeys keeps keys whose translations were all filtered out.
	IncludeEmptyKeys bool
}

// Reconciler plans and applies bulk imports and produces exports.
type Reconciler struct {
	tx           catalog.Transactor
	services     catalog.ServiceRepository
	keys         catalog.KeyRepository
	translations catalog.TranslationRepository
	resolver     catalog.AccessResolver
	recorder     audit.Recorder
}

// Deps bundles the reconciler's collaborators.
type Deps struct {
	Tx           catalog.Transactor
	Services     catalog.ServiceRepository
	Keys         catalog.KeyRepository
	Translations catalog.TranslationRepository
	Resolver     catalog.AccessResolver
	Recorder     audit.Recorder
}

// New creates a Reconciler.
func New(d Deps) *Reconciler {
	return &Reconciler{
		tx:           d.Tx,
		services:     d.Services,
		keys:         d.Keys,
		translations: d.Translations,
		resolver:     d.Resolver,
		recorder:     d.Recorder,
	}
}

// Plan computes the diff between the payload and current state. It is
// read-only: repeated calls with unchanged state yield identical reports
// and touch no key, translation, or event rows.
func (r *Reconciler) Plan(ctx context.Context, id identity.Identity, serviceID string, p *Payload) (*DiffReport, error) {
	if err := r.requireWrite(ctx, id, serviceID); err != nil {
		return nil, err
	}
	if err := validatePayload(p); err != nil {
		return nil, err
	}

	state, err := r.loadState(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	plansCounter.Inc()
	return computeDiff(p, state), nil
}

// Apply executes exactly the writes the diff implies in one transaction,
// in payload order: each key's fields, then its translations. Every write
// records one audit event, and one import summary event closes the batch.
// Any failure, including an audit write, rolls the whole import back; a
// constraint violation surfaces as ErrImportConflict.
func (r *Reconciler) Apply(ctx context.Context, id identity.Identity, serviceID string, p *Payload) (*ApplyResult, error) {
	if err := validatePayload(p); err != nil {
		return nil, err
	}

	result := &ApplyResult{}
	err := r.tx.InTransaction(ctx, func(ctx context.Context) error {
		// The access check joins the import transaction so ownership is
		// evaluated against the same snapshot the writes land on.
		if err := r.requireWrite(ctx, id, serviceID); err != nil {
			return err
		}
		state, err := r.loadState(ctx, serviceID)
		if err != nil {
			return err
		}

		for _, pk := range p.Data.Keys {
			written, err := r.applyKey(ctx, id, serviceID, pk, state)
			if err != nil {
				return err
			}
			if written {
				result.KeysWritten++
			}
			for _, pt := range pk.Translations {
				written, err := r.applyTranslation(ctx, id, pk, pt, state)
				if err != nil {
					return err
				}
				if written {
					result.TranslationsWritten++
				}
			}
		}

		_, err = r.recorder.Record(ctx, audit.Entry{
			Actor:      id.SubjectID(),
			Action:     audit.ActionImport,
			EntityType: catalog.EntityService,
			EntityID:   serviceID,
			After:      result,
		})
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			appliesCounter.WithLabelValues("conflict").Inc()
			return nil, oops.Code("IMPORT_CONFLICT").
				With("service_id", serviceID).
				Wrap(errors.Join(ErrImportConflict, err))
		}
		appliesCounter.WithLabelValues("error").Inc()
		return nil, err
	}
	appliesCounter.WithLabelValues("ok").Inc()
	return result, nil
}

// Export produces the import payload shape for a service: keys sorted by
// key name, translations by locale. Exporting and re-planning unchanged
// data yields an empty diff. One export audit event is recorded.
func (r *Reconciler) Export(ctx context.Context, id identity.Identity, serviceID string, opts ExportOptions) (*Payload, error) {
	if err := r.require(ctx, id, serviceID, identity.PermissionRead); err != nil {
		return nil, err
	}
	for _, locale := range opts.Locales {
		if err := catalog.ValidateLocale(locale); err != nil {
			return nil, err
		}
	}

	svc, err := r.services.Get(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	keys, err := r.keys.List(ctx, catalog.ListKeysOptions{
		ServiceID: &serviceID,
		Status:    opts.Status,
	}, access.Unrestricted())
	if err != nil {
		return nil, err
	}
	translations, err := r.translations.ListByService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	wantLocale := func(string) bool { return true }
	if len(opts.Locales) > 0 {
		set := make(map[string]struct{}, len(opts.Locales))
		for _, l := range opts.Locales {
			set[l] = struct{}{}
		}
		wantLocale = func(locale string) bool {
			_, ok := set[locale]
			return ok
		}
	}

	byKey := make(map[string][]*catalog.Translation)
	for _, tr := range translations {
		if wantLocale(tr.Locale) {
			byKey[tr.KeyID] = append(byKey[tr.KeyID], tr)
		}
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].KeyName < keys[j].KeyName })

	locales := opts.Locales
	if len(locales) == 0 {
		locales = catalog.SupportedLocales
	}
	payload := &Payload{
		Service:    svc.Code,
		Locales:    locales,
		ExportedAt: time.Now().UTC(),
		Data:       Data{Keys: []PayloadKey{}},
	}

	exported := 0
	for _, key := range keys {
		trs := byKey[key.ID]
		if len(trs) == 0 && !opts.IncludeEmptyKeys {
			continue
		}
		sort.Slice(trs, func(i, j int) bool { return trs[i].Locale < trs[j].Locale })

		pk := PayloadKey{
			ID:           key.ID,
			KeyName:      key.KeyName,
			NamespaceID:  key.NamespaceID,
			Tags:         key.Tags,
			Status:       string(key.Status),
			Translations: make([]PayloadTranslation, 0, len(trs)),
		}
		for _, tr := range trs {
			pk.Translations = append(pk.Translations, PayloadTranslation{
				Locale:  tr.Locale,
				Value:   tr.Value,
				Status:  string(tr.Status),
				Version: tr.Version,
			})
			exported++
		}
		payload.Data.Keys = append(payload.Data.Keys, pk)
	}

	_, err = r.recorder.Record(ctx, audit.Entry{
		Actor:      id.SubjectID(),
		Action:     audit.ActionExport,
		EntityType: catalog.EntityService,
		EntityID:   serviceID,
		After: map[string]any{
			"keys":         len(payload.Data.Keys),
			"translations": exported,
			"locales":      locales,
		},
	})
	if err != nil {
		return nil, err
	}
	exportsCounter.Inc()
	return payload, nil
}

func (r *Reconciler) requireWrite(ctx context.Context, id identity.Identity, serviceID string) error {
	return r.require(ctx, id, serviceID, identity.PermissionWrite)
}

func (r *Reconciler) require(ctx context.Context, id identity.Identity, serviceID string, perm identity.Permission) error {
	if id.IsAnonymous() {
		return catalog.ErrUnauthenticated
	}
	allowed, err := r.resolver.CanAccess(ctx, id, access.ServiceRef(serviceID), perm)
	if err != nil {
		return err
	}
	if !allowed {
		return oops.Code("PERMISSION_DENIED").
			With("subject", id.SubjectID()).
			With("service_id", serviceID).
			Wrap(catalog.ErrPermissionDenied)
	}
	return nil
}

// serviceState is a snapshot of a service's keys and translations used
// for diffing.
type serviceState struct {
	keys         map[string]*catalog.Key         // by key id
	translations map[string]*catalog.Translation // by key id + "\x00" + locale
}

func trKey(keyID, locale string) string { return keyID + "\x00" + locale }

func (r *Reconciler) loadState(ctx context.Context, serviceID string) (*serviceState, error) {
	keys, err := r.keys.List(ctx, catalog.ListKeysOptions{ServiceID: &serviceID}, access.Unrestricted())
	if err != nil {
		return nil, err
	}
	translations, err := r.translations.ListByService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	state := &serviceState{
		keys:         make(map[string]*catalog.Key, len(keys)),
		translations: make(map[string]*catalog.Translation, len(translations)),
	}
	for _, key := range keys {
		state.keys[key.ID] = key
	}
	for _, tr := range translations {
		state.translations[trKey(tr.KeyID, tr.Locale)] = tr
	}
	return state, nil
}

// computeDiff classifies every incoming key and translation against the
// snapshot. Rows equal field-for-field are no-ops and never appear.
func computeDiff(p *Payload, state *serviceState) *DiffReport {
	report := &DiffReport{Changes: []Change{}}
	for _, pk := range p.Data.Keys {
		existing, ok := state.keys[pk.ID]
		switch {
		case !ok:
			report.add(Change{Type: ChangeCreateKey, KeyID: pk.ID, KeyName: pk.KeyName})
		default:
			if fields := keyDiffFields(existing, pk); len(fields) > 0 {
				report.add(Change{Type: ChangeUpdateKey, KeyID: pk.ID, KeyName: pk.KeyName, Fields: fields})
			}
		}

		for _, pt := range pk.Translations {
			existing, ok := state.translations[trKey(pk.ID, pt.Locale)]
			switch {
			case !ok:
				report.add(Change{
					Type: ChangeCreateTranslation, KeyID: pk.ID, KeyName: pk.KeyName, Locale: pt.Locale,
				})
			default:
				if fields := translationDiffFields(existing, pt); len(fields) > 0 {
					report.add(Change{
						Type: ChangeUpdateTranslation, KeyID: pk.ID, KeyName: pk.KeyName,
						Locale: pt.Locale, Fields: fields,
					})
				}
			}
		}
	}
	return report
}

func keyDiffFields(existing *catalog.Key, pk PayloadKey) []string {
	var fields []string
	if existing.KeyName != pk.KeyName {
		fields = append(fields, "keyName")
	}
	if !strPtrEqual(existing.NamespaceID, pk.NamespaceID) {
		fields = append(fields, "namespaceId")
	}
	if !tagsEqual(existing.Tags, pk.Tags) {
		fields = append(fields, "tags")
	}
	if string(existing.Status) != pk.Status {
		fields = append(fields, "status")
	}
	return fields
}

// translationDiffFields compares value and status. Version is
// server-managed and deliberately excluded: comparing it would turn a
// re-import of an old export into an endless stream of bumps.
func translationDiffFields(existing *catalog.Translation, pt PayloadTranslation) []string {
	var fields []string
	if existing.Value != pt.Value {
		fields = append(fields, "value")
	}
	if string(existing.Status) != pt.Status {
		fields = append(fields, "status")
	}
	return fields
}

// applyKey writes one incoming key if it differs, with its audit event.
// Returns whether a write happened.
func (r *Reconciler) applyKey(ctx context.Context, id identity.Identity, serviceID string, pk PayloadKey, state *serviceState) (bool, error) {
	existing, ok := state.keys[pk.ID]
	if !ok {
		key := &catalog.Key{
			ID:          pk.ID,
			KeyName:     pk.KeyName,
			ServiceID:   &serviceID,
			NamespaceID: pk.NamespaceID,
			Tags:        pk.Tags,
			Status:      catalog.Status(pk.Status),
		}
		if err := r.keys.Create(ctx, key); err != nil {
			return false, err
		}
		_, err := r.recorder.Record(ctx, audit.Entry{
			Actor:      id.SubjectID(),
			Action:     audit.ActionCreate,
			EntityType: catalog.EntityKey,
			EntityID:   key.ID,
			After:      key,
		})
		return true, err
	}

	if len(keyDiffFields(existing, pk)) == 0 {
		return false, nil
	}
	after := *existing
	after.KeyName = pk.KeyName
	after.NamespaceID = pk.NamespaceID
	after.Tags = pk.Tags
	after.Status = catalog.Status(pk.Status)
	if err := r.keys.Update(ctx, &after); err != nil {
		return false, err
	}
	_, err := r.recorder.Record(ctx, audit.Entry{
		Actor:      id.SubjectID(),
		Action:     audit.ActionUpdate,
		EntityType: catalog.EntityKey,
		EntityID:   pk.ID,
		Before:     existing,
		After:      &after,
	})
	return true, err
}

// applyTranslation writes one incoming translation if it differs, with
// its audit event. Returns whether a write happened.
func (r *Reconciler) applyTranslation(ctx context.Context, id identity.Identity, pk PayloadKey, pt PayloadTranslation, state *serviceState) (bool, error) {
	existing, ok := state.translations[trKey(pk.ID, pt.Locale)]
	if !ok {
		tr := &catalog.Translation{
			ID:     ulid.Make().String(),
			KeyID:  pk.ID,
			Locale: pt.Locale,
			Value:  pt.Value,
			Status: catalog.Status(pt.Status),
		}
		if err := r.translations.Create(ctx, tr); err != nil {
			return false, err
		}
		_, err := r.recorder.Record(ctx, audit.Entry{
			Actor:      id.SubjectID(),
			Action:     audit.ActionCreate,
			EntityType: catalog.EntityTranslation,
			EntityID:   tr.ID,
			After:      tr,
		})
		return true, err
	}

	if len(translationDiffFields(existing, pt)) == 0 {
		return false, nil
	}
	after := *existing
	after.Value = pt.Value
	after.Status = catalog.Status(pt.Status)
	if err := r.translations.Update(ctx, &after); err != nil {
		return false, err
	}
	_, err := r.recorder.Record(ctx, audit.Entry{
		Actor:      id.SubjectID(),
		Action:     audit.ActionUpdate,
		EntityType: catalog.EntityTranslation,
		EntityID:   existing.ID,
		Before:     existing,
		After:      &after,
	})
	return true, err
}

// validatePayload runs the domain validators over every incoming row, so
// a bad row rejects the whole payload before any write.
func validatePayload(p *Payload) error {
	for _, pk := range p.Data.Keys {
		if err := catalog.ValidateKeyName(pk.KeyName); err != nil {
			return err
		}
		if err := catalog.ValidateTags(pk.Tags); err != nil {
			return err
		}
		if err := catalog.ValidateStatus(catalog.Status(pk.Status)); err != nil {
			return err
		}
		for _, pt := range pk.Translations {
			if err := catalog.ValidateLocale(pt.Locale); err != nil {
				return err
			}
			if err := catalog.ValidateValue(pt.Value); err != nil {
				return err
			}
			if err := catalog.ValidateStatus(catalog.Status(pt.Status)); err != nil {
				return err
			}
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
