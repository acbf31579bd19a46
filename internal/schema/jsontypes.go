package schema

import (
	"database/sql/driver"
	"encoding/json"
)

// JSONArray 以 JSON 文本存储的字符串列表
type JSONArray []string

// Value 实现 driver.Valuer 接口
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return "[]", nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口
func (j *JSONArray) Scan(value interface{}) error {
	bytes, ok := scanBytes(value)
	if !ok {
		*j = make(JSONArray, 0)
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// scanBytes 把数据库返回值规整为字节串
func scanBytes(value interface{}) ([]byte, bool) {
	if value == nil {
		return nil, false
	}
	switch v := value.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}
