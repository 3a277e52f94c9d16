package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"nutriflow/internal/domain/entity"
	"nutriflow/internal/domain/repository"
	"nutriflow/internal/domain/service"
	"nutriflow/internal/infrastructure/session"
	"nutriflow/pkg/errors"
)

const DefaultMaxUploadBytes int64 = 5 * 1024 * 1024

type ProfileUseCase struct {
	userRepo       repository.UserRepository
	identity       IdentityProfileUpdater
	files          service.FileUploadService
	maxUploadBytes int64
	now            Clock
}

func NewProfileUseCase(
	userRepo repository.UserRepository,
	identity IdentityProfileUpdater,
	files service.FileUploadService,
	maxUploadBytes int64,
) *ProfileUseCase {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &ProfileUseCase{
		userRepo:       userRepo,
		identity:       identity,
		files:          files,
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
	}
}

type UpdateProfileInput struct {
	Name           string
	CRN            string
	WhatsappNumber string
}

type OnboardingInput struct {
	CRN            string
	WhatsappNumber string
	Logo           []byte
}

func (uc *ProfileUseCase) Get(ctx context.Context, uid string) (*entity.User, error) {
	if uid == "" {
		return nil, errors.ErrNoSession
	}
	return uc.userRepo.GetByID(ctx, uid)
}

// EnsureProfile returns users/{uid}, creating it from the session on first
// sign-in.
func (uc *ProfileUseCase) EnsureProfile(ctx context.Context, sess *session.Session) (*entity.User, error) {
	if sess == nil || sess.ID == "" {
		return nil, errors.ErrNoSession
	}

	user, err := uc.userRepo.GetByID(ctx, sess.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	now := uc.now().UTC()
	user = &entity.User{
		ID:    sess.ID,
		Name:  sess.DisplayName,
		Email: sess.Email,
		Subscription: &entity.Subscription{
			Type:   entity.SubscriptionFree,
			Status: entity.SubscriptionActive,
		},
		NotificationSettings: entity.DefaultNotificationSettings(),
		PrivacySettings:      entity.DefaultPrivacySettings(),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		// Another session of the same user got there first.
		if errors.Is(err, errors.CodeConflict) {
			return uc.userRepo.GetByID(ctx, sess.ID)
		}
		return nil, err
	}
	log.Printf("Profile created for user %s", sess.ID)
	return user, nil
}

func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, uid string, input UpdateProfileInput) (*entity.User, error) {
	if uid == "" {
		return nil, errors.ErrNoSession
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.BadRequest("Nome é obrigatório", nil)
	}

	fields := map[string]interface{}{
		"name":           name,
		"crn":            strings.TrimSpace(input.CRN),
		"whatsappNumber": strings.TrimSpace(input.WhatsappNumber),
		"updatedAt":      uc.now().UTC(),
	}
	if err := uc.userRepo.Merge(ctx, uid, fields); err != nil {
		return nil, err
	}

	if err := uc.identity.UpdateProfile(ctx, uid, name, ""); err != nil {
		log.Printf("UpdateProfile Error: identity display name for %s: %v", uid, err)
		return nil, errors.Internal("Erro ao atualizar perfil", err)
	}
	return uc.userRepo.GetByID(ctx, uid)
}

func (uc *ProfileUseCase) CompleteOnboarding(ctx context.Context, uid string, input OnboardingInput) (*entity.User, error) {
	if uid == "" {
		return nil, errors.ErrNoSession
	}
	crn := strings.TrimSpace(input.CRN)
	whatsapp := strings.TrimSpace(input.WhatsappNumber)
	if crn == "" || whatsapp == "" {
		return nil, errors.BadRequest("Preencha todos os campos obrigatórios", nil)
	}

	fields := map[string]interface{}{
		"crn":            crn,
		"whatsappNumber": whatsapp,
		"updatedAt":      uc.now().UTC(),
	}
	if len(input.Logo) > 0 {
		url, err := uc.uploadImage(ctx, "logos/"+uid, input.Logo)
		if err != nil {
			return nil, err
		}
		fields["logoUrl"] = url
	}

	if err := uc.userRepo.Merge(ctx, uid, fields); err != nil {
		return nil, err
	}
	return uc.userRepo.GetByID(ctx, uid)
}

// UploadAvatar stores the image, points the identity photo at it and
// records it as the profile logo.
func (uc *ProfileUseCase) UploadAvatar(ctx context.Context, uid string, blob []byte) (string, error) {
	if uid == "" {
		return "", errors.ErrNoSession
	}

	path := fmt.Sprintf("avatars/%s/%d", uid, uc.now().UnixMilli())
	url, err := uc.uploadImage(ctx, path, blob)
	if err != nil {
		return "", err
	}

	if err := uc.identity.UpdateProfile(ctx, uid, "", url); err != nil {
		log.Printf("UploadAvatar Error: identity photo for %s: %v", uid, err)
		return "", errors.Internal("Erro ao atualizar foto", err)
	}

	fields := map[string]interface{}{
		"logoUrl":   url,
		"updatedAt": uc.now().UTC(),
	}
	if err := uc.userRepo.Merge(ctx, uid, fields); err != nil {
		return "", err
	}
	return url, nil
}

// uploadImage rejects oversized or non-image payloads before touching
// storage.
func (uc *ProfileUseCase) uploadImage(ctx context.Context, path string, blob []byte) (string, error) {
	if int64(len(blob)) > uc.maxUploadBytes {
		return "", errors.TooLarge(fmt.Sprintf("Imagem muito grande. Máximo %dMB.", uc.maxUploadBytes/(1024*1024)))
	}
	if len(blob) == 0 {
		return "", errors.BadRequest("Arquivo vazio", nil)
	}

	mtype := mimetype.Detect(blob)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", errors.BadRequest("Por favor, selecione uma imagem válida", nil)
	}

	url, err := uc.files.Upload(ctx, path, blob, mtype.String())
	if err != nil {
		log.Printf("Upload Error: %s: %v", path, err)
		return "", errors.Internal("Erro ao enviar imagem", err)
	}
	return url, nil
}

func (uc *ProfileUseCase) SetNotificationSetting(ctx context.Context, uid, key string, enabled bool) (*entity.User, error) {
	return uc.setToggle(ctx, uid, "notificationSettings", entity.DefaultNotificationSettings(), key, enabled)
}

func (uc *ProfileUseCase) SetPrivacySetting(ctx context.Context, uid, key string, enabled bool) (*entity.User, error) {
	return uc.setToggle(ctx, uid, "privacySettings", entity.DefaultPrivacySettings(), key, enabled)
}

func (uc *ProfileUseCase) setToggle(ctx context.Context, uid, group string, known map[string]bool, key string, enabled bool) (*entity.User, error) {
	if uid == "" {
		return nil, errors.ErrNoSession
	}
	if _, ok := known[key]; !ok {
		return nil, errors.BadRequest(fmt.Sprintf("Configuração desconhecida: %s", key), nil)
	}

	fields := map[string]interface{}{
		group:       map[string]interface{}{key: enabled},
		"updatedAt": uc.now().UTC(),
	}
	if err := uc.userRepo.Merge(ctx, uid, fields); err != nil {
		return nil, err
	}
	return uc.userRepo.GetByID(ctx, uid)
}
