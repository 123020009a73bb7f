package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"hostelms/internal/domain"
	"hostelms/internal/repository"
)

type Service struct {
	rooms  RoomRepository
	ledger AllocationCounter
}

func NewService(rooms RoomRepository, ledger AllocationCounter) *Service {
	return &Service{
		rooms:  rooms,
		ledger: ledger,
	}
}

func (s *Service) CreateRoom(ctx context.Context, req CreateRoomRequest) (*domain.Room, error) {
	room := domain.Room{
		Number:   req.Number,
		Building: req.Building,
		Floor:    req.Floor,
		Hostel:   req.Hostel,
		Type:     domain.RoomType(req.Type),
		Capacity: req.Capacity,
	}
	if err := validateRoom(&room); err != nil {
		return nil, err
	}

	if _, err := s.rooms.GetByNumber(ctx, room.Number); err == nil {
		return nil, fmt.Errorf("%w: room with number %s already exists", ErrConflict, room.Number)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.rooms.Create(ctx, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Service) GetRoom(ctx context.Context, id int64) (*domain.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (s *Service) ListRooms(ctx context.Context, f repository.RoomFilters) ([]domain.Room, int64, error) {
	return s.rooms.List(ctx, f)
}

func (s *Service) UpdateRoom(ctx context.Context, id int64, req UpdateRoomRequest) (*domain.Room, error) {
	room, err := s.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Number != nil && *req.Number != room.Number {
		if _, err := s.rooms.GetByNumber(ctx, *req.Number); err == nil {
			return nil, fmt.Errorf("%w: room with number %s already exists", ErrConflict, *req.Number)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		room.Number = *req.Number
	}
	if req.Building != nil {
		room.Building = *req.Building
	}
	if req.Floor != nil {
		room.Floor = *req.Floor
	}
	if req.Hostel != nil {
		room.Hostel = *req.Hostel
	}
	if req.Type != nil {
		room.Type = domain.RoomType(*req.Type)
	}
	if req.Capacity != nil {
		occupied, err := s.ledger.CountCurrentByRoom(ctx, id)
		if err != nil {
			return nil, err
		}
		if int64(*req.Capacity) < occupied {
			return nil, fmt.Errorf("%w: capacity %d is below the %d current allocations", ErrValidation, *req.Capacity, occupied)
		}
		room.Capacity = *req.Capacity
	}

	if err := validateRoom(room); err != nil {
		return nil, err
	}
	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *Service) DeleteRoom(ctx context.Context, id int64) error {
	occupied, err := s.ledger.CountCurrentByRoom(ctx, id)
	if err != nil {
		return err
	}
	if occupied > 0 {
		return fmt.Errorf("%w: cannot delete room with active allocations", ErrConflict)
	}

	err = s.rooms.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func validateRoom(r *domain.Room) error {
	if r.Number == "" || r.Building == "" || r.Hostel == "" {
		return fmt.Errorf("%w: number, building and hostel are required", ErrValidation)
	}
	if !domain.KnownHostel(r.Hostel) {
		return fmt.Errorf("%w: unknown hostel %q", ErrValidation, r.Hostel)
	}
	if !domain.ValidRoomType(r.Type) {
		return fmt.Errorf("%w: unknown room type %q", ErrValidation, r.Type)
	}
	if r.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", ErrValidation)
	}
	return nil
}
