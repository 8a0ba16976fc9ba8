// Package generation defines the boundary between the request queue and the
// external generative backend. The queue only ever sees the single-method
// Answerer capability; everything behind it (retrieval, prompt construction,
// model invocation) is a black box supplied by a platform package.
package generation
