package models

// ErrorResponse โครงสร้างมาตรฐานสำหรับการส่ง Error
type ErrorResponse struct {
	Message string `json:"message"`         // ข้อความสำหรับผู้ใช้
	Error   string `json:"error,omitempty"` // รายละเอียดของ Error (internal errors only)
}
