package domain

type Holiday struct {
	Date       Date   `json:"date"`
	Name       string `json:"name"`
	IsOfficial bool   `json:"isOfficial"` // false 表示协议假日
}
