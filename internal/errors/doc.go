// Package errors provides structured, actionable error messages for uicli.
//
// Every failure the CLI can report has a unique code (e.g., "E130") that maps to:
//   - A short message describing the error
//   - A category used to group related failures
//   - A documentation URL
//
// # Error Categories
//
//   - cli: Command-line usage errors
//   - validation: Rejected input (component names)
//   - config: uicli.json and Tailwind config problems
//   - network: Remote fetch failures (not found, rate limited, transport)
//   - filesystem: Writes into the project tree
//   - dependency: External package manager failures
//
// # Usage
//
//	err := errors.New("E130").
//	    WithDetail("Component 'buton' not found in library").
//	    WithSuggestion("Run 'uicli list' to see available components")
//
//	fmt.Println(err.FormatCompact())
//	// Output:
//	// E130: Component not found: Component 'buton' not found in library
package errors
