// Package progress provides the event primitives, the hub, and the sink
// interfaces that lookups use to report their milestones. The hub delivers
// every event to each sink in emission order, so a terminal sink prints lines
// in the order the pipeline produced them.
package progress
