package model

// UserRole 用户角色，由上游认证服务在 JWT claims 中签发
type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)
