// Package pattern compiles the two pattern languages used by rule documents.
//
// Regular expressions are used by file_extension, content and event filters
// and by validate conditions. Two engines are available:
//
//   - re2: Go's regexp package (the default)
//   - ecmascript: github.com/dlclark/regexp2 in ECMAScript mode, which adds
//     lookaround and backreferences that rule authors often copy from
//     JavaScript tooling
//
// Globs are used by directory filters and by the front matter globs field.
// They are compiled with github.com/gobwas/glob using '/' as the separator
// and follow the usual editor conventions: `*` stays within a path segment,
// `**` crosses segments, `?` is one character, `[...]` is a class (`[!...]`
// negates) and `{a,b}` is an alternation. A glob without a slash also
// matches the base name of a path, so `*.ts` matches `src/app/main.ts`.
package pattern
