// Package combine groups documents by a composite key and reduces each group
// to a single document.
//
// Documents sharing a key are folded together with associative reductions as
// they arrive. Draining the combiner yields one document per key in a
// deterministic order. A drain may optionally apply a full reduction, which
// prunes bookkeeping state such as set tombstones, or flush through a durable
// register store so groups survive process restarts.
//
// Register identity is content-addressed: the extracted key values are
// canonically encoded per RFC 8785 and hashed with SHA-256 under a domain
// prefix, so semantically equal keys always land in the same register.
package combine
