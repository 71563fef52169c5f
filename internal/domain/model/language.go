package model

type Language string

const (
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangCSharp     Language = "csharp"
	LangGo         Language = "go"
	LangJava       Language = "java"
	LangJavaScript Language = "javascript"
	LangKotlin     Language = "kotlin"
	LangPython     Language = "python"
	LangPython2    Language = "python2"
	LangPython3    Language = "python3"
	LangRust       Language = "rust"
	LangTypeScript Language = "typescript"
	LangPHP        Language = "php"
	LangRuby       Language = "ruby"
	LangBash       Language = "bash"
)
