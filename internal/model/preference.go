package model

// 主题
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Profile 学生资料
type Profile struct {
	Name         string `json:"name"`
	Age          string `json:"age"`
	Class        string `json:"class"`
	School       string `json:"school"`
	ParentName   string `json:"parent-name"`
	ParentNumber string `json:"parent-number"`
}
