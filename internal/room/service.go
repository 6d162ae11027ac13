package room

import (
	"context"
	"strings"
)

type CreateRequest struct {
	Number        string
	Name          string
	RoomType      string
	Description   string
	Status        Status // defaults to active
	Capacity      int
	PricePerNight float64
}

// UpdateRequest holds the editable fields; nil means unchanged.
type UpdateRequest struct {
	Number        *string
	Name          *string
	RoomType      *string
	Description   *string
	Status        *Status
	Capacity      *int
	PricePerNight *float64
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Room, error)
	GetByID(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)
	ListBookable(ctx context.Context, minCapacity int) ([]*Room, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Room, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// validate checks the invariants every stored room must satisfy.
func validate(r *Room) error {
	if r.Number == "" {
		return ErrEmptyNumber
	}
	if r.Name == "" {
		return ErrEmptyName
	}
	if !r.Status.Valid() {
		return ErrInvalidStatus
	}
	if r.Capacity < 1 {
		return ErrInvalidCapacity
	}
	if r.PricePerNight < 0 {
		return ErrInvalidPrice
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Room, error) {
	rm := &Room{
		Number:        strings.TrimSpace(req.Number),
		Name:          strings.TrimSpace(req.Name),
		RoomType:      strings.TrimSpace(req.RoomType),
		Description:   req.Description,
		Status:        req.Status,
		Capacity:      req.Capacity,
		PricePerNight: req.PricePerNight,
	}
	if rm.Status == "" {
		rm.Status = StatusActive
	}

	if err := validate(rm); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, rm); err != nil {
		return nil, err
	}
	return rm, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Room, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

func (s *service) ListBookable(ctx context.Context, minCapacity int) ([]*Room, error) {
	if minCapacity < 1 {
		minCapacity = 1
	}
	return s.repo.ListBookable(ctx, minCapacity)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Room, error) {
	rm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Number != nil {
		rm.Number = strings.TrimSpace(*req.Number)
	}
	if req.Name != nil {
		rm.Name = strings.TrimSpace(*req.Name)
	}
	if req.RoomType != nil {
		rm.RoomType = strings.TrimSpace(*req.RoomType)
	}
	if req.Description != nil {
		rm.Description = *req.Description
	}
	if req.Status != nil {
		rm.Status = *req.Status
	}
	if req.Capacity != nil {
		rm.Capacity = *req.Capacity
	}
	if req.PricePerNight != nil {
		rm.PricePerNight = *req.PricePerNight
	}

	if err := validate(rm); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, rm); err != nil {
		return nil, err
	}
	return rm, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
