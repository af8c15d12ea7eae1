package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/petcare/rfid-gateway/internal/audit"
	apperrors "github.com/petcare/rfid-gateway/internal/errors"
	"github.com/petcare/rfid-gateway/internal/model"
	"github.com/petcare/rfid-gateway/internal/pairing"
	"github.com/petcare/rfid-gateway/internal/repository"
	"github.com/petcare/rfid-gateway/internal/util"
)

const defaultLookupTimeout = 2 * time.Second

// errPetMissing marks a NotFound whose missing resource is the pet rather
// than the tag, so the reader can show a distinct message.
var errPetMissing = errors.New("pet missing")

func petNotFound() *apperrors.AppError {
	return apperrors.NotFound("Pet").WithCause(errPetMissing)
}

// GatewayService drives the pairing lifecycle and resolves tag reads.
//
// A reader is either idle or awaiting a tag for a pet. A read on an awaiting
// reader enrolls the tag (the session is consumed whatever the outcome); a
// read on an idle reader is a check-in of an already registered tag.
type GatewayService struct {
	tagRepo       repository.TagRepository
	petRepo       repository.PetRepository
	ownerRepo     repository.OwnerRepository
	sessions      pairing.Store
	lastRead      *LastReadCache
	lookupTimeout time.Duration
	now           func() time.Time
}

func NewGatewayService(
	tagRepo repository.TagRepository,
	petRepo repository.PetRepository,
	ownerRepo repository.OwnerRepository,
	sessions pairing.Store,
	lastRead *LastReadCache,
	lookupTimeout time.Duration,
) *GatewayService {
	if lookupTimeout <= 0 {
		lookupTimeout = defaultLookupTimeout
	}
	if lastRead == nil {
		lastRead = NewLastReadCache()
	}
	return &GatewayService{
		tagRepo:       tagRepo,
		petRepo:       petRepo,
		ownerRepo:     ownerRepo,
		sessions:      sessions,
		lastRead:      lastRead,
		lookupTimeout: lookupTimeout,
		now:           time.Now,
	}
}

func (s *GatewayService) StartPairing(ctx context.Context, petID, readerID string) (*model.PairingStatus, error) {
	if err := validateReaderID(readerID); err != nil {
		return nil, err
	}
	if petID == "" {
		return nil, apperrors.MissingRequired("petId")
	}

	pet, err := s.findPet(ctx, petID)
	if err != nil {
		return nil, err
	}
	if pet == nil {
		return nil, petNotFound()
	}

	session, err := s.sessions.Start(ctx, readerID, petID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "Pairing store error", err)
	}

	log.Info().
		Str("readerId", readerID).
		Str("petId", petID).
		Dur("timeout", s.sessions.Timeout()).
		Msg("pairing started")

	return s.statusFromSession(readerID, session), nil
}

func (s *GatewayService) CancelPairing(ctx context.Context, readerID string) error {
	if err := validateReaderID(readerID); err != nil {
		return err
	}

	if err := s.sessions.Cancel(ctx, readerID); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "Pairing store error", err)
	}

	log.Info().Str("readerId", readerID).Msg("pairing cancelled")
	return nil
}

func (s *GatewayService) PairingStatus(ctx context.Context, readerID string) (*model.PairingStatus, error) {
	if err := validateReaderID(readerID); err != nil {
		return nil, err
	}

	session, err := s.sessions.Status(ctx, readerID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "Pairing store error", err)
	}

	return s.statusFromSession(readerID, session), nil
}

// ProcessRead resolves one physical scan: enrollment when the reader has a
// live pairing session, check-in otherwise. It never fails; every outcome is
// reported in the result and recorded as the last read.
func (s *GatewayService) ProcessRead(ctx context.Context, read model.TagRead) *ReadResult {
	read = s.normalizeRead(read)

	var result *ReadResult
	if err := validateRead(read); err != nil {
		result = failureResult(read, err)
	} else {
		result = s.register(ctx, read)
		if result.Outcome == model.OutcomeNoPairing {
			result = s.checkIn(ctx, read)
		}
	}

	s.remember(read, result)
	return result
}

// HandleCheckIn is ProcessRead for callers that want non-success outcomes
// as errors: NotFound for unknown tags, InvalidState for inactive ones.
func (s *GatewayService) HandleCheckIn(ctx context.Context, tagUID, readerID string) (*ReadResult, error) {
	result := s.ProcessRead(ctx, model.TagRead{TagUID: tagUID, ReaderID: readerID})
	return result, result.Err()
}

// RegisterTagRead only enrolls: a reader without a live session yields a
// no_pairing outcome instead of a check-in.
func (s *GatewayService) RegisterTagRead(ctx context.Context, read model.TagRead) *ReadResult {
	read = s.normalizeRead(read)

	var result *ReadResult
	if err := validateRead(read); err != nil {
		result = failureResult(read, err)
	} else {
		result = s.register(ctx, read)
	}

	s.remember(read, result)
	return result
}

// ResolveIdentity looks up tag, pet and owner. Unregistered and inactive tags
// are both NotFound here.
func (s *GatewayService) ResolveIdentity(ctx context.Context, tagUID string) (*model.Identity, error) {
	tagUID = util.NormalizeTagUID(tagUID)
	if !util.IsValidTagUID(tagUID) {
		return nil, apperrors.MissingRequired("tagUid")
	}

	identity, err := s.resolve(ctx, tagUID)
	if apperrors.Is(err, apperrors.ErrCodeInvalidState) {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "Tag inactive")
	}
	return identity, err
}

func (s *GatewayService) LastTagRead() (*model.LastTagRead, bool) {
	return s.lastRead.Get()
}

func (s *GatewayService) SetTagActive(ctx context.Context, tagUID string, active bool) (*model.Tag, error) {
	tagUID = util.NormalizeTagUID(tagUID)
	if !util.IsValidTagUID(tagUID) {
		return nil, apperrors.MissingRequired("tagUid")
	}

	lctx, cancel := s.lookupContext(ctx)
	defer cancel()

	tag, err := s.tagRepo.SetActive(lctx, tagUID, active)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if tag == nil {
		return nil, apperrors.NotFound("Tag")
	}

	log.Info().
		Str("tagUid", tagUID).
		Bool("active", active).
		Msg("tag activation changed")

	return tag, nil
}

func (s *GatewayService) TagsForPet(ctx context.Context, petID string) ([]model.Tag, error) {
	if petID == "" {
		return nil, apperrors.MissingRequired("petId")
	}

	lctx, cancel := s.lookupContext(ctx)
	defer cancel()

	tags, err := s.tagRepo.FindByPetID(lctx, petID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return tags, nil
}

func (s *GatewayService) register(ctx context.Context, read model.TagRead) *ReadResult {
	session, err := s.sessions.Claim(ctx, read.ReaderID)
	if err != nil {
		log.Error().Err(err).Str("readerId", read.ReaderID).Msg("claim pairing session")
		return failureResult(read, apperrors.Wrap(apperrors.ErrCodeInternal, "Pairing store error", err))
	}
	if session == nil {
		return noPairingResult(read)
	}

	exists, err := s.tagExists(ctx, read.TagUID)
	if err != nil {
		return failureResult(read, err)
	}
	if exists {
		return s.rejectDuplicate(ctx, read, session)
	}

	pet, err := s.findPet(ctx, session.PetID)
	if err != nil {
		return failureResult(read, err)
	}
	if pet == nil {
		log.Warn().
			Str("readerId", read.ReaderID).
			Str("petId", session.PetID).
			Msg("paired pet no longer exists")
		return failureResult(read, petNotFound())
	}

	lctx, cancel := s.lookupContext(ctx)
	tag, err := s.tagRepo.Create(lctx, model.CreateTagParams{
		ID:     uuid.NewString(),
		TagUID: read.TagUID,
		PetID:  pet.ID,
	})
	cancel()
	if errors.Is(err, repository.ErrDuplicateTag) {
		return s.rejectDuplicate(ctx, read, session)
	}
	if err != nil {
		return failureResult(read, apperrors.Database(err))
	}

	owner, err := s.findOwner(ctx, pet.OwnerID)
	if err != nil {
		log.Warn().Err(err).Str("ownerId", pet.OwnerID).Msg("owner lookup failed after registration")
	}

	audit.Log(ctx, audit.Event{
		Type:     audit.EventTagRegistered,
		ReaderID: read.ReaderID,
		PetID:    pet.ID,
		TagUID:   tag.TagUID,
	})

	log.Info().
		Str("tagUid", tag.TagUID).
		Str("petId", pet.ID).
		Str("readerId", read.ReaderID).
		Msg("tag registered")

	return registeredResult(read, model.NewIdentity(tag.TagUID, pet, owner))
}

// rejectDuplicate leaves the existing binding untouched and audits the
// rejected attempt.
func (s *GatewayService) rejectDuplicate(ctx context.Context, read model.TagRead, session *model.PairingSession) *ReadResult {
	audit.Log(ctx, audit.Event{
		Type:     audit.EventTagConflict,
		ReaderID: read.ReaderID,
		PetID:    session.PetID,
		TagUID:   read.TagUID,
	})

	log.Warn().
		Str("tagUid", read.TagUID).
		Str("petId", session.PetID).
		Str("readerId", read.ReaderID).
		Msg("tag already registered, pairing discarded")

	return conflictResult(read, session.PetID)
}

func (s *GatewayService) checkIn(ctx context.Context, read model.TagRead) *ReadResult {
	identity, err := s.resolve(ctx, read.TagUID)
	if err != nil {
		log.Info().
			Err(err).
			Str("tagUid", read.TagUID).
			Str("readerId", read.ReaderID).
			Msg("check-in rejected")
		return failureResult(read, err)
	}

	log.Info().
		Str("tagUid", read.TagUID).
		Str("petId", identity.PetID).
		Str("readerId", read.ReaderID).
		Msg("check-in")

	return checkedInResult(read, identity)
}

func (s *GatewayService) resolve(ctx context.Context, tagUID string) (*model.Identity, error) {
	lctx, cancel := s.lookupContext(ctx)
	tag, err := s.tagRepo.FindByTagUID(lctx, tagUID)
	cancel()
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if tag == nil {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "Tag not registered")
	}
	if !tag.Active {
		return nil, apperrors.InvalidState("Tag inactive")
	}

	pet, err := s.findPet(ctx, tag.PetID)
	if err != nil {
		return nil, err
	}
	if pet == nil {
		return nil, petNotFound()
	}

	owner, err := s.findOwner(ctx, pet.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, apperrors.NotFound("Owner")
	}

	return model.NewIdentity(tag.TagUID, pet, owner), nil
}

func (s *GatewayService) tagExists(ctx context.Context, tagUID string) (bool, error) {
	lctx, cancel := s.lookupContext(ctx)
	defer cancel()

	exists, err := s.tagRepo.ExistsByTagUID(lctx, tagUID)
	if err != nil {
		return false, apperrors.Database(err)
	}
	return exists, nil
}

func (s *GatewayService) findPet(ctx context.Context, petID string) (*model.Pet, error) {
	lctx, cancel := s.lookupContext(ctx)
	defer cancel()

	pet, err := s.petRepo.FindByID(lctx, petID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return pet, nil
}

func (s *GatewayService) findOwner(ctx context.Context, ownerID string) (*model.Owner, error) {
	lctx, cancel := s.lookupContext(ctx)
	defer cancel()

	owner, err := s.ownerRepo.FindByID(lctx, ownerID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return owner, nil
}

func (s *GatewayService) lookupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.lookupTimeout)
}

func (s *GatewayService) remember(read model.TagRead, result *ReadResult) {
	now := s.now()
	result.Success = result.Outcome.Success()
	result.Timestamp = now.UnixMilli()

	s.lastRead.Set(model.LastTagRead{
		TagUID:    read.TagUID,
		ReaderID:  read.ReaderID,
		Timestamp: now,
		Found:     result.Identity != nil,
		Outcome:   result.Outcome,
		Identity:  result.Identity,
	})
}

func (s *GatewayService) normalizeRead(read model.TagRead) model.TagRead {
	read.TagUID = util.NormalizeTagUID(read.TagUID)
	if read.Timestamp.IsZero() {
		read.Timestamp = s.now()
	}
	return read
}

func (s *GatewayService) statusFromSession(readerID string, session *model.PairingSession) *model.PairingStatus {
	if session == nil {
		return &model.PairingStatus{
			ReaderID: readerID,
			Message:  "Reader is not pairing",
		}
	}

	expiresAt := session.CreatedAt.Add(s.sessions.Timeout())
	return &model.PairingStatus{
		ReaderID:  readerID,
		IsPairing: true,
		PetID:     session.PetID,
		ExpiresAt: &expiresAt,
		Message:   "Waiting for tag",
	}
}

func validateReaderID(readerID string) error {
	if readerID == "" {
		return apperrors.MissingRequired("readerId")
	}
	if !util.IsValidReaderID(readerID) {
		return apperrors.InvalidInput("readerId", "must be 1-64 letters, digits or . _ : -").
			WithDetails(map[string]string{"readerId": readerID})
	}
	return nil
}

func validateRead(read model.TagRead) error {
	if !util.IsValidTagUID(read.TagUID) {
		return apperrors.MissingRequired("tagUid")
	}
	return validateReaderID(read.ReaderID)
}
