// Package normalize converts parameter values between the wire formats used
// by the processing service and the edit formats controls work with.
//
// Dates travel as YYYYMMDD, times as HHMMSS and datetimes as YYYYMMDDHHMMSS;
// controls edit them as ISO-like strings. Colours travel as "r,g,b" float
// triplets in [0,1] and are edited as #RRGGBB. Tables travel as JSON encoded
// row arrays and are edited as rows keyed by column name.
//
// Every conversion is total: bad input yields an empty or fallback value
// rather than an error so controls always receive a well-typed value.
package normalize
