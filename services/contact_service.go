package services

import (
	"context"

	"safeher/models"
	"safeher/repositories"
	"safeher/utils"

	"go.mongodb.org/mongo-driver/bson"
)

// MaxContacts caps the emergency contact list. Alerting fans out to every
// contact on each emergency, so the list stays small on purpose.
const MaxContacts = 5

type ContactService struct {
	contactRepo *repositories.ContactRepository
	validator   *utils.ValidationService
}

func NewContactService(contactRepo *repositories.ContactRepository, validator *utils.ValidationService) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		validator:   validator,
	}
}

func (s *ContactService) List(ctx context.Context) ([]models.Contact, error) {
	return s.contactRepo.List(ctx)
}

// ListContacts satisfies the dispatcher's read-only contact source.
func (s *ContactService) ListContacts(ctx context.Context) ([]models.Contact, error) {
	return s.contactRepo.List(ctx)
}

func (s *ContactService) Get(ctx context.Context, id string) (*models.Contact, error) {
	return s.contactRepo.FindByID(ctx, id)
}

func (s *ContactService) Add(ctx context.Context, req models.AddContactRequest) (*models.Contact, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, utils.NewValidationError(errs[0].Message)
	}

	count, err := s.contactRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count >= MaxContacts {
		return nil, utils.NewConflictError("contact limit reached")
	}

	phone := utils.NormalizePhoneNumber(req.Phone)
	existing, err := s.contactRepo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, utils.NewConflictError("contact with this phone already exists")
	}

	contact := &models.Contact{
		ID:          utils.GenerateUUID(),
		Name:        req.Name,
		Phone:       phone,
		Email:       req.Email,
		Relation:    req.Relation,
		DeviceToken: req.DeviceToken,
	}
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) Update(ctx context.Context, id string, req models.UpdateContactRequest) (*models.Contact, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, utils.NewValidationError(errs[0].Message)
	}

	update := bson.M{}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Phone != "" {
		update["phone"] = utils.NormalizePhoneNumber(req.Phone)
	}
	if req.Email != "" {
		update["email"] = req.Email
	}
	if req.Relation != "" {
		update["relation"] = req.Relation
	}
	if req.DeviceToken != "" {
		update["deviceToken"] = req.DeviceToken
	}
	if len(update) == 0 {
		return s.contactRepo.FindByID(ctx, id)
	}
	return s.contactRepo.Update(ctx, id, update)
}

func (s *ContactService) Delete(ctx context.Context, id string) error {
	return s.contactRepo.Delete(ctx, id)
}
