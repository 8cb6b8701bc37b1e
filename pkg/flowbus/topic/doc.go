// Package topic implements topic pattern matching for flowbus.
//
// Topics are plain strings, conventionally dot-separated uppercase segments
// such as "USER.LOGIN" or "WF.checkout.STATE.CHANGE". A subscription pattern
// is either an exact topic or a wildcard pattern containing '*'.
//
// # Matching Rules
//
// Exact patterns match only the identical topic, compared case-sensitively:
//
//	Match("USER.LOGIN", "USER.LOGIN") // true
//	Match("USER.LOGIN", "user.login") // false
//
// Wildcard patterns match the whole topic case-insensitively. Each '*'
// absorbs zero or more arbitrary characters and is not bounded by segments,
// every other character is literal:
//
//	Match("USER.*", "USER.LOGIN")       // true
//	Match("USER.*", "user.login.extra") // true
//	Match("USER.*", "ADMIN.LOGIN")      // false
//
// The difference in case handling between the two forms is long-standing
// behavior that subscribers depend on.
//
// # Catalog
//
// Catalog records, at the application boundary, which payload shape each
// topic literal carries. The bus itself never consults it.
package topic
