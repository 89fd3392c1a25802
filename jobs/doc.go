// Package jobs tracks the progress of batch ingestion jobs.
//
// Job state lives in Redis with a TTL so finished jobs expire on their own;
// when Redis is unreachable at startup the tracker degrades to an in-process
// store so ingestion keeps working without durable progress. All updates to a
// job are serialized per job ID, which makes the read-modify-write cycle safe
// under concurrent document completions.
package jobs
