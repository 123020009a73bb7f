package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"hostelms/internal/domain"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

type roomModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	Number    string    `gorm:"column:number;uniqueIndex;size:32"`
	Building  string    `gorm:"column:building;size:128"`
	Floor     int       `gorm:"column:floor"`
	Hostel    string    `gorm:"column:hostel;index;size:64"`
	Type      string    `gorm:"column:type;size:32"`
	Capacity  int       `gorm:"column:capacity"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (roomModel) TableName() string { return "rooms" }

func toDomainRoom(m roomModel) *domain.Room {
	return &domain.Room{
		ID:        m.ID,
		Number:    m.Number,
		Building:  m.Building,
		Floor:     m.Floor,
		Hostel:    m.Hostel,
		Type:      domain.RoomType(m.Type),
		Capacity:  m.Capacity,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toRoomModel(r *domain.Room) roomModel {
	return roomModel{
		ID:        r.ID,
		Number:    r.Number,
		Building:  r.Building,
		Floor:     r.Floor,
		Hostel:    r.Hostel,
		Type:      string(r.Type),
		Capacity:  r.Capacity,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// RoomFilters narrows a room listing. Zero values mean "no filter".
type RoomFilters struct {
	Building      string
	Floor         *int
	Type          string
	Hostel        string
	AvailableOnly bool
	Limit         int
	Offset        int
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	m := toRoomModel(room)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*room = *toDomainRoom(m)
	return nil
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	var m roomModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainRoom(m), nil
}

func (r *RoomRepository) GetByNumber(ctx context.Context, number string) (*domain.Room, error) {
	var m roomModel
	if err := r.db.WithContext(ctx).Where("number = ?", number).First(&m).Error; err != nil {
		return nil, err
	}
	return toDomainRoom(m), nil
}

// List returns rooms matching the filters plus the total match count, ordered
// by building, floor and room number so pagination is deterministic.
func (r *RoomRepository) List(ctx context.Context, f RoomFilters) ([]domain.Room, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&roomModel{})
		if f.Building != "" {
			q = q.Where("rooms.building = ?", f.Building)
		}
		if f.Floor != nil {
			q = q.Where("rooms.floor = ?", *f.Floor)
		}
		if f.Type != "" {
			q = q.Where("rooms.type = ?", f.Type)
		}
		if f.Hostel != "" {
			q = q.Where("rooms.hostel = ?", f.Hostel)
		}
		if f.AvailableOnly {
			occupied := r.db.Model(&allocationModel{}).
				Select("room_id, COUNT(*) AS occupied").
				Where("status = ?", domain.AllocationCurrent).
				Group("room_id")
			q = q.Joins("LEFT JOIN (?) occ ON occ.room_id = rooms.id", occupied).
				Where("occ.occupied IS NULL OR occ.occupied < rooms.capacity")
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := base().Order("rooms.building, rooms.floor, rooms.number")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var models []roomModel
	if err := q.Find(&models).Error; err != nil {
		return nil, 0, err
	}

	rooms := make([]domain.Room, 0, len(models))
	for _, m := range models {
		rooms = append(rooms, *toDomainRoom(m))
	}
	return rooms, total, nil
}

func (r *RoomRepository) Update(ctx context.Context, room *domain.Room) error {
	m := toRoomModel(room)
	if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
		return err
	}
	*room = *toDomainRoom(m)
	return nil
}

func (r *RoomRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&roomModel{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
