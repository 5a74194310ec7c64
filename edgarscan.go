// Package edgarscan indexes, downloads and textually scans EDGAR filings.
// It splits each compressed filing container into its sub-documents, reads
// labelled header fields, searches document text for loan-contract
// vocabulary and stores the extracted facts in a relational store.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gzip/, goquery/).
package edgarscan
