package catalog

type CreateRoomRequest struct {
	Number   string `json:"number" binding:"required"`
	Building string `json:"building" binding:"required"`
	Floor    int    `json:"floor"`
	Hostel   string `json:"hostel" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Capacity int    `json:"capacity" binding:"required"`
}

type UpdateRoomRequest struct {
	Number   *string `json:"number"`
	Building *string `json:"building"`
	Floor    *int    `json:"floor"`
	Hostel   *string `json:"hostel"`
	Type     *string `json:"type"`
	Capacity *int    `json:"capacity"`
}
