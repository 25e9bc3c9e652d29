// Package i18n holds the user-facing strings in every supported language.
package i18n

import (
	"golang.org/x/text/language"
)

// Text is the full set of UI strings for one language.
type Text struct {
	Title        string
	Subtitle     string
	Play         string
	Edit         string
	Reset        string
	Switch       string
	Moves        string
	Targets      string
	Win          string
	Next         string
	Tools        string
	Width        string
	Height       string
	Export       string
	Import       string
	Test         string
	Back         string
	Copied       string
	Error        string
	P1           string
	P2           string
	Instructions string
	Controls     string

	PressStart  string
	Records     string
	Levels      string
	Room        string
	Waiting     string
	YouAre      string
	Both        string
	NotYourTurn string
	Saved       string
	Paused      string
	Quit        string
	Stuck       string
	Clears      string
	Best        string
	Average     string
}

var (
	english = Text{
		Title:        "DUALITY",
		Subtitle:     "PARADOX",
		Play:         "PLAY",
		Edit:         "EDITOR",
		Reset:        "RESET (R)",
		Switch:       "SWITCH (SPACE)",
		Moves:        "MOVES",
		Targets:      "TARGETS",
		Win:          "LEVEL CLEAR!",
		Next:         "NEXT LEVEL",
		Tools:        "TOOLS",
		Width:        "W",
		Height:       "H",
		Export:       "COPY DATA",
		Import:       "PASTE DATA",
		Test:         "TEST LEVEL",
		Back:         "BACK TO EDIT",
		Copied:       "COPIED!",
		Error:        "INVALID DATA",
		P1:           "P1 (WHITE)",
		P2:           "P2 (BLACK)",
		Instructions: "P1 moves on DARK. P2 moves on LIGHT. Inactive character becomes terrain.",
		Controls:     "WASD / Arrows to Move. SPACE to Switch.",

		PressStart:  "PRESS ANY KEY",
		Records:     "RECORDS",
		Levels:      "LEVELS",
		Room:        "ROOM",
		Waiting:     "WAITING FOR PARTNER",
		YouAre:      "YOU ARE",
		Both:        "BOTH",
		NotYourTurn: "NOT YOUR TOKEN",
		Saved:       "SAVED",
		Paused:      "PAUSED",
		Quit:        "Q TO QUIT",
		Stuck:       "NO SOLUTION",
		Clears:      "CLEARS",
		Best:        "BEST",
		Average:     "AVG",
	}

	chinese = Text{
		Title:        "双相",
		Subtitle:     "悖论",
		Play:         "开始游戏",
		Edit:         "关卡编辑",
		Reset:        "重置 (R)",
		Switch:       "切换 (空格)",
		Moves:        "步数",
		Targets:      "目标",
		Win:          "过关！",
		Next:         "下一关",
		Tools:        "工具",
		Width:        "宽",
		Height:       "高",
		Export:       "复制数据",
		Import:       "粘贴数据",
		Test:         "测试关卡",
		Back:         "返回编辑",
		Copied:       "已复制!",
		Error:        "数据无效",
		P1:           "P1 (白)",
		P2:           "P2 (黑)",
		Instructions: "白方块走黑路，黑方块走白路。静止的角色会化为对方的路。",
		Controls:     "WASD / 方向键移动。空格键 / E 键切换角色。",

		PressStart:  "按任意键开始",
		Records:     "记录",
		Levels:      "关卡",
		Room:        "房间",
		Waiting:     "等待队友",
		YouAre:      "你是",
		Both:        "双方",
		NotYourTurn: "不是你的角色",
		Saved:       "已保存",
		Paused:      "暂停",
		Quit:        "按 Q 退出",
		Stuck:       "无解",
		Clears:      "通关",
		Best:        "最佳",
		Average:     "平均",
	}
)

var (
	supported = []language.Tag{language.English, language.Chinese}
	matcher   = language.NewMatcher(supported)
)

// For returns the strings for the best match of the given language
// preferences, such as "zh", "zh-Hans-CN" or an Accept-Language header.
// Unknown or empty input falls back to English.
func For(prefs ...string) *Text {
	tag, _ := language.MatchStrings(matcher, prefs...)
	if base, _ := tag.Base(); base.String() == "zh" {
		return &chinese
	}
	return &english
}

// Code returns the short code of the best match, "en" or "zh".
func Code(prefs ...string) string {
	if For(prefs...) == &chinese {
		return "zh"
	}
	return "en"
}

// Toggle returns the other supported language code.
func Toggle(code string) string {
	if Code(code) == "zh" {
		return "en"
	}
	return "zh"
}
