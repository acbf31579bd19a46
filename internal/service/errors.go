package service

import "errors"

// 服务层的哨兵错误，HTTP 层据此映射状态码
var (
	ErrRecordExists   = errors.New("该日期的记录已存在")
	ErrRecordNotFound = errors.New("该日期的记录不存在")
	ErrWeeklyNotFound = errors.New("该周的分析不存在")
	ErrWeekEmpty      = errors.New("该周没有任何记录")
	ErrInvalidDate    = errors.New("日期格式错误")
	ErrInvalidWeekID  = errors.New("周 ID 格式错误")
)
