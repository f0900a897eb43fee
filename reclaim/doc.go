// Package reclaim finds token accounts held by a batch of wallets and closes
// them, paying the recovered rent to a single destination while a separate
// fee payer covers network fees.
//
// A run moves through Idle -> Scanning -> Reclaiming -> Completed. Work is
// strictly sequential: wallets are scanned in input order with a short delay
// before each one and a longer pause after every batch, and closures are
// followed by a fixed delay. Every network call goes through retry.WithRetry.
package reclaim
