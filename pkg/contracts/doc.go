// Package contracts builds and dispatches calls to the SiHiRi Clarity contracts.
//
// Read-only calls go straight to the node API and come back decoded. State
// changing calls are routed through a Wallet, which blocks until the user
// approves or rejects the transaction; the adapter imposes no timeout of its
// own and only the caller's context can abandon the wait.
//
// Calls that move the caller's STX balance must carry a post-condition
// bounding the outflow. Building such a call without one is a caller error
// and is rejected before the wallet is ever involved.
//
// Per-contract wrappers:
//   - NFT: ownership, metadata URI, minting and transfer
//   - Identity: creator profiles and usernames
//   - Marketplace: listings, auctions and bids
//   - Royalty: payment history and direct payments
package contracts
