// Package bidding implements the marketplace project-bidding domain:
// entities for users, seekers, providers, projects and bids, the bid
// repository, eligibility and proximity scoring, and the workflow for
// placing, approving, and canceling bids.
package bidding
