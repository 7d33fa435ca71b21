// Package condition parses and evaluates the structured keys used by
// conditional bindings.
//
// A condition key is a semicolon separated list of property:value pairs.
// Only two properties are recognized:
//
//	when:<modifier state reported with the triggering key>
//	languageId:<language of the active document>
//
// Examples:
//
//	"languageId:markdown"
//	"when:sideBarVisible;languageId:go"
//
// A key with no recognized property parses to no condition at all, which is
// how the else branch of a conditional binding is written (usually "").
package condition
