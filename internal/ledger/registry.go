// Package ledger implements the transcript registry: institutions, students,
// transcripts and courses behind role-gated, journaled writes.
//
// Every write runs under a single lock as validate, journal append, apply and
// publish. The in-memory state is a projection of the journal and is rebuilt
// on startup by replaying it through the same apply path.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/yigit/transcriptledger/internal/app/models"
)

// Option configures a Registry
type Option func(*Registry)

// WithPublisher sets the event publisher
func WithPublisher(p Publisher) Option {
	return func(r *Registry) {
		if p != nil {
			r.publisher = p
		}
	}
}

// WithLogger sets the registry logger
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// WithClock overrides the time source used for entry timestamps
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithMetrics registers ledger metrics on reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(r *Registry) {
		if reg != nil {
			r.metrics = newMetrics(reg)
		}
	}
}

// Registry is the single authority for ledger records
type Registry struct {
	mu        sync.RWMutex
	journal   Journal
	publisher Publisher
	logger    zerolog.Logger
	now       func() time.Time
	metrics   *metrics

	access            *AccessControl
	perms             PermissionChecker
	institutions      []models.Institution
	institutionByAddr map[common.Address]uint64
	students          map[common.Address]models.Student
	studentTranscript map[common.Address][]uint64
	transcripts       []models.Transcript
	courses           [][]models.Course
	head              Head
}

func newRegistry(j Journal, opts ...Option) *Registry {
	access := NewAccessControl()
	r := &Registry{
		journal:           j,
		publisher:         nopPublisher{},
		logger:            zerolog.Nop(),
		now:               time.Now,
		access:            access,
		perms:             access,
		institutionByAddr: make(map[common.Address]uint64),
		students:          make(map[common.Address]models.Student),
		studentTranscript: make(map[common.Address][]uint64),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load rebuilds a registry by replaying j. Events are not published during
// replay.
func Load(ctx context.Context, j Journal, opts ...Option) (*Registry, error) {
	r := newRegistry(j, opts...)
	if _, err := r.catchUp(ctx, false); err != nil {
		return nil, fmt.Errorf("failed to replay journal: %w", err)
	}
	r.logger.Info().
		Uint64("head", r.head.Seq).
		Int("institutions", len(r.institutions)).
		Int("transcripts", len(r.transcripts)).
		Msg("Ledger replayed")
	return r, nil
}

// Sync applies entries that other writers appended to the journal since this
// registry last read it, publishing their events. It returns the number of
// entries applied.
func (r *Registry) Sync(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.catchUp(ctx, true)
}

// catchUp replays the journal past r.head. The caller must hold r.mu for
// writing, or own r exclusively.
func (r *Registry) catchUp(ctx context.Context, publish bool) (int, error) {
	applied := 0
	err := r.journal.Replay(ctx, r.head.Seq, func(e Entry) error {
		if err := VerifyLink(r.head, e); err != nil {
			return err
		}
		evt, err := r.apply(e)
		if err != nil {
			return fmt.Errorf("%w: entry %d (%s): %v", ErrJournalCorrupt, e.Seq, e.Kind, err)
		}
		r.head = Head{Seq: e.Seq, Hash: e.Hash}
		applied++
		if publish {
			r.publisher.Publish(evt)
		}
		return nil
	})
	r.metrics.setHead(r.head.Seq)
	return applied, err
}

// Open loads the registry from j and, when the journal is empty, writes the
// genesis entry granting ADMIN to admin.
func Open(ctx context.Context, j Journal, admin common.Address, opts ...Option) (*Registry, error) {
	r, err := Load(ctx, j, opts...)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.head.Seq > 0 {
		if admin != (common.Address{}) && !r.access.HasRole(models.RoleAdmin, admin) {
			r.logger.Warn().Str("admin", admin.Hex()).Msg("Configured admin does not hold ADMIN in the existing journal")
		}
		return r, nil
	}
	if admin == (common.Address{}) {
		return nil, fmt.Errorf("%w: genesis admin is required for an empty journal", ErrInvalidAddress)
	}
	if _, err := r.commit(ctx, EventRoleGranted, common.Address{}, RoleChanged{Role: models.RoleAdmin, Account: admin}); err != nil {
		if errors.Is(err, ErrJournalConflict) && r.head.Seq > 0 {
			// another writer wrote the genesis entry first
			return r, nil
		}
		return nil, fmt.Errorf("failed to write genesis entry: %w", err)
	}
	r.logger.Info().Str("admin", admin.Hex()).Msg("Ledger genesis written")
	return r, nil
}

// commit journals a new entry, applies it and publishes its event.
// The caller must hold r.mu for writing.
func (r *Registry) commit(ctx context.Context, kind EventType, caller common.Address, payload any) (Event, error) {
	entry, err := NewEntry(r.head, kind, caller, payload, r.now())
	if err != nil {
		return Event{}, err
	}
	if err := r.journal.Append(ctx, entry); err != nil {
		if errors.Is(err, ErrJournalConflict) {
			// Another writer extended the journal. Catch up so a retry is
			// validated against the current state.
			applied, syncErr := r.catchUp(ctx, true)
			if syncErr != nil {
				return Event{}, fmt.Errorf("failed to append %s entry: %w", kind, errors.Join(err, syncErr))
			}
			r.logger.Info().Int("applied", applied).Uint64("head", r.head.Seq).Msg("Ledger caught up with journal")
		}
		return Event{}, fmt.Errorf("failed to append %s entry: %w", kind, err)
	}
	evt, err := r.apply(entry)
	if err != nil {
		// The entry is durable but the projection refused it. Replaying the
		// journal will surface the same error.
		r.logger.Error().Err(err).Uint64("seq", entry.Seq).Str("kind", string(kind)).Msg("Committed entry could not be applied")
		return Event{}, fmt.Errorf("%w: %v", ErrJournalCorrupt, err)
	}
	r.head = Head{Seq: entry.Seq, Hash: entry.Hash}
	r.metrics.setHead(entry.Seq)

	r.logger.Debug().
		Uint64("seq", entry.Seq).
		Str("kind", string(kind)).
		Str("caller", caller.Hex()).
		Msg("Ledger entry committed")

	r.publisher.Publish(evt)
	return evt, nil
}

func (r *Registry) requireRole(role models.Role, caller common.Address) error {
	if !r.perms.HasRole(role, caller) {
		return fmt.Errorf("%w: %s required", ErrUnauthorized, role)
	}
	return nil
}

func requireField(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyField, name)
	}
	return value, nil
}

// transcript returns the transcript with id. The caller must hold r.mu.
func (r *Registry) transcript(id uint64) (*models.Transcript, error) {
	if id == 0 || id > uint64(len(r.transcripts)) {
		return nil, fmt.Errorf("%w: %d", ErrTranscriptNotFound, id)
	}
	return &r.transcripts[id-1], nil
}

// institution returns the institution with id. The caller must hold r.mu.
func (r *Registry) institution(id uint64) (*models.Institution, error) {
	if id == 0 || id > uint64(len(r.institutions)) {
		return nil, fmt.Errorf("%w: %d", ErrInstitutionNotFound, id)
	}
	return &r.institutions[id-1], nil
}

// issuerCheck rejects callers that did not issue t, and issuers that have
// since been deactivated
func (r *Registry) issuerCheck(caller common.Address, t *models.Transcript) error {
	if r.institutionByAddr[caller] != t.InstitutionID {
		return fmt.Errorf("%w: transcript %d", ErrNotIssuer, t.ID)
	}
	inst, err := r.institution(t.InstitutionID)
	if err != nil {
		return err
	}
	if !inst.IsActive {
		return fmt.Errorf("%w: %d", ErrInstitutionInactive, inst.ID)
	}
	return nil
}

// RegisterInstitution registers an institution controlled by addr and grants
// it the INSTITUTION role. Only ADMIN may call it.
func (r *Registry) RegisterInstitution(ctx context.Context, caller common.Address, name, accreditationNumber string, addr common.Address) (id uint64, err error) {
	defer func() { r.metrics.observe(EventInstitutionRegistered, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireRole(models.RoleAdmin, caller); err != nil {
		return 0, err
	}
	if name, err = requireField("name", name); err != nil {
		return 0, err
	}
	if accreditationNumber, err = requireField("accreditationNumber", accreditationNumber); err != nil {
		return 0, err
	}
	if addr == (common.Address{}) {
		return 0, fmt.Errorf("%w: institution address", ErrInvalidAddress)
	}
	if _, ok := r.institutionByAddr[addr]; ok {
		return 0, fmt.Errorf("%w: %s", ErrInstitutionAlreadyRegistered, addr.Hex())
	}

	id = uint64(len(r.institutions)) + 1
	_, err = r.commit(ctx, EventInstitutionRegistered, caller, InstitutionRegistered{
		ID:                  id,
		Name:                name,
		AccreditationNumber: accreditationNumber,
		Address:             addr,
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// DeactivateInstitution marks an institution inactive and revokes the
// INSTITUTION role from its address. Only ADMIN may call it.
func (r *Registry) DeactivateInstitution(ctx context.Context, caller common.Address, id uint64) (err error) {
	defer func() { r.metrics.observe(EventInstitutionDeactivated, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireRole(models.RoleAdmin, caller); err != nil {
		return err
	}
	inst, err := r.institution(id)
	if err != nil {
		return err
	}
	if !inst.IsActive {
		return fmt.Errorf("%w: %d", ErrAlreadyDeactivated, id)
	}
	_, err = r.commit(ctx, EventInstitutionDeactivated, caller, InstitutionDeactivated{ID: id, Address: inst.Address})
	return err
}

// RegisterStudent registers the caller as a student
func (r *Registry) RegisterStudent(ctx context.Context, caller common.Address, name, studentID string) (err error) {
	defer func() { r.metrics.observe(EventStudentRegistered, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if caller == (common.Address{}) {
		return fmt.Errorf("%w: caller", ErrInvalidAddress)
	}
	if name, err = requireField("name", name); err != nil {
		return err
	}
	if studentID, err = requireField("studentId", studentID); err != nil {
		return err
	}
	if _, ok := r.students[caller]; ok {
		return fmt.Errorf("%w: %s", ErrStudentAlreadyRegistered, caller.Hex())
	}

	_, err = r.commit(ctx, EventStudentRegistered, caller, StudentRegistered{
		Address:   caller,
		Name:      name,
		StudentID: studentID,
	})
	return err
}

// CreateTranscript opens a transcript for a registered student, issued by
// the caller's institution
func (r *Registry) CreateTranscript(ctx context.Context, caller, student common.Address, degree, major, semester, ipfsHash string) (id uint64, err error) {
	defer func() { r.metrics.observe(EventTranscriptCreated, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireRole(models.RoleInstitution, caller); err != nil {
		return 0, err
	}
	instID, ok := r.institutionByAddr[caller]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrCallerNotInstitution, caller.Hex())
	}
	if !r.institutions[instID-1].IsActive {
		return 0, fmt.Errorf("%w: %d", ErrInstitutionInactive, instID)
	}
	if degree, err = requireField("degree", degree); err != nil {
		return 0, err
	}
	if major, err = requireField("major", major); err != nil {
		return 0, err
	}
	if _, ok := r.students[student]; !ok {
		return 0, fmt.Errorf("%w: %s", ErrStudentNotRegistered, student.Hex())
	}

	id = uint64(len(r.transcripts)) + 1
	_, err = r.commit(ctx, EventTranscriptCreated, caller, TranscriptCreated{
		TranscriptID:   id,
		StudentAddress: student,
		InstitutionID:  instID,
		Degree:         degree,
		Major:          major,
		Semester:       strings.TrimSpace(semester),
		IPFSHash:       strings.TrimSpace(ipfsHash),
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// AddCourse appends a graded course to a transcript. Only the issuing
// institution may add courses, and only before verification.
func (r *Registry) AddCourse(ctx context.Context, caller common.Address, transcriptID uint64, code, name string, credits int, grade string, completionDate time.Time) (err error) {
	defer func() { r.metrics.observe(EventCourseAdded, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireRole(models.RoleInstitution, caller); err != nil {
		return err
	}
	t, err := r.transcript(transcriptID)
	if err != nil {
		return err
	}
	if err := r.issuerCheck(caller, t); err != nil {
		return err
	}
	if t.IsVerified {
		return fmt.Errorf("%w: %d", ErrAlreadyVerified, transcriptID)
	}
	if code, err = requireField("courseCode", code); err != nil {
		return err
	}
	if name, err = requireField("courseName", name); err != nil {
		return err
	}
	if credits <= 0 || credits > MaxCredits {
		return fmt.Errorf("%w: %d", ErrInvalidCredits, credits)
	}
	if _, err := GradePoints(grade); err != nil {
		return err
	}
	if completionDate.IsZero() {
		return fmt.Errorf("%w: completion date is required", ErrInvalidDate)
	}

	_, err = r.commit(ctx, EventCourseAdded, caller, CourseAdded{
		TranscriptID:   transcriptID,
		CourseCode:     code,
		CourseName:     name,
		Credits:        credits,
		Grade:          NormalizeGrade(grade),
		CompletionDate: completionDate.UTC(),
	})
	return err
}

// SetGraduationDate records the graduation date of a transcript
func (r *Registry) SetGraduationDate(ctx context.Context, caller common.Address, transcriptID uint64, date time.Time) (err error) {
	defer func() { r.metrics.observe(EventGraduationDateSet, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireRole(models.RoleInstitution, caller); err != nil {
		return err
	}
	t, err := r.transcript(transcriptID)
	if err != nil {
		return err
	}
	if err := r.issuerCheck(caller, t); err != nil {
		return err
	}
	if t.IsVerified {
		return fmt.Errorf("%w: %d", ErrAlreadyVerified, transcriptID)
	}
	if date.IsZero() {
		return fmt.Errorf("%w: graduation date is required", ErrInvalidDate)
	}

	_, err = r.commit(ctx, EventGraduationDateSet, caller, GraduationDateSet{
		TranscriptID:   transcriptID,
		GraduationDate: date.UTC(),
	})
	return err
}

// VerifyTranscript marks a transcript verified. VERIFIER or ADMIN may call
// it, once per transcript.
func (r *Registry) VerifyTranscript(ctx context.Context, caller common.Address, transcriptID uint64) (err error) {
	defer func() { r.metrics.observe(EventTranscriptVerified, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.perms.HasRole(models.RoleVerifier, caller) && !r.perms.HasRole(models.RoleAdmin, caller) {
		return fmt.Errorf("%w: %s or %s required", ErrUnauthorized, models.RoleVerifier, models.RoleAdmin)
	}
	t, err := r.transcript(transcriptID)
	if err != nil {
		return err
	}
	if t.IsVerified {
		return fmt.Errorf("%w: %d", ErrAlreadyVerified, transcriptID)
	}

	_, err = r.commit(ctx, EventTranscriptVerified, caller, TranscriptVerified{
		TranscriptID: transcriptID,
		Verifier:     caller,
	})
	return err
}

// GrantRole grants role to account. It reports false without writing when
// the role is already held.
func (r *Registry) GrantRole(ctx context.Context, caller common.Address, role models.Role, account common.Address) (changed bool, err error) {
	defer func() { r.metrics.observe(EventRoleGranted, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireRole(models.RoleAdmin, caller); err != nil {
		return false, err
	}
	if _, ok := roleBit(role); !ok {
		return false, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if account == (common.Address{}) {
		return false, fmt.Errorf("%w: account", ErrInvalidAddress)
	}
	if r.access.HasRole(role, account) {
		return false, nil
	}
	if _, err := r.commit(ctx, EventRoleGranted, caller, RoleChanged{Role: role, Account: account}); err != nil {
		return false, err
	}
	return true, nil
}

// RevokeRole revokes role from account. It reports false without writing
// when the role is not held. The last ADMIN cannot be revoked.
func (r *Registry) RevokeRole(ctx context.Context, caller common.Address, role models.Role, account common.Address) (changed bool, err error) {
	defer func() { r.metrics.observe(EventRoleRevoked, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireRole(models.RoleAdmin, caller); err != nil {
		return false, err
	}
	if _, ok := roleBit(role); !ok {
		return false, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if !r.access.HasRole(role, account) {
		return false, nil
	}
	if role == models.RoleAdmin && r.access.adminCount() <= 1 {
		return false, ErrLastAdmin
	}
	if _, err := r.commit(ctx, EventRoleRevoked, caller, RoleChanged{Role: role, Account: account}); err != nil {
		return false, err
	}
	return true, nil
}
