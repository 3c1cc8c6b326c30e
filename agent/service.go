package agent

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 1000
)

type Service struct {
	engine     *gin.Engine
	indexer    *ChainIndexer
	listenAddr string
}

func NewService(ListenAddr string, indexer *ChainIndexer) *Service {
	r := gin.New()
	r.Use(gin.Recovery())
	s := &Service{
		engine:     r,
		indexer:    indexer,
		listenAddr: ListenAddr,
	}
	s.engine.POST("/getProposals", s.handleGetProposals)
	s.engine.POST("/getProposal", s.handleGetProposal)
	s.engine.POST("/getVotes", s.handleGetVotes)
	s.engine.POST("/getTransfers", s.handleGetTransfers)
	s.engine.POST("/getMembers", s.handleGetMembers)
	return s
}

func (s *Service) Start() error {
	return s.engine.Run(s.listenAddr)
}

func (s *Service) Handler() http.Handler {
	return s.engine
}

type Paging struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

func (p Paging) normalize() (int, int) {
	page, size := p.Page, p.PageSize
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

type GetProposalsReq struct {
	Proposer  string `json:"proposer"`
	Applicant string `json:"applicant"`
	Paging
}

type GetProposalsResponse struct {
	Proposals []Proposal `json:"proposals"`
	Total     uint64     `json:"total"`
}

func (s *Service) handleGetProposals(c *gin.Context) {
	var requestData GetProposalsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, size := requestData.normalize()
	proposals, total, err := s.indexer.getProposals(requestData.Proposer, requestData.Applicant, page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response := GetProposalsResponse{Proposals: make([]Proposal, 0, len(proposals)), Total: total}
	response.Proposals = append(response.Proposals, proposals...)
	c.JSON(http.StatusOK, response)
}

type GetProposalReq struct {
	ProposalIndex *uint64 `json:"proposalIndex" binding:"required"`
}

type ProposalInfo struct {
	Proposal Proposal       `json:"proposal"`
	Votes    []ProposalVote `json:"votes"`
}

func (s *Service) handleGetProposal(c *gin.Context) {
	var requestData GetProposalReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	idx := *requestData.ProposalIndex
	proposal, err := s.indexer.getProposalByIndex(idx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "proposal not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	votes, err := s.indexer.getVotesByProposal(idx, 0, maxPageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ProposalInfo{Proposal: proposal, Votes: append(make([]ProposalVote, 0, len(votes)), votes...)})
}

type GetVotesReq struct {
	ProposalIndex *uint64 `json:"proposalIndex"`
	Voter         string  `json:"voter"`
	Paging
}

type GetVotesResponse struct {
	Votes []ProposalVote `json:"votes"`
}

func (s *Service) handleGetVotes(c *gin.Context) {
	var requestData GetVotesReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, size := requestData.normalize()
	var (
		votes []ProposalVote
		err   error
	)
	switch {
	case requestData.ProposalIndex != nil:
		votes, err = s.indexer.getVotesByProposal(*requestData.ProposalIndex, page, size)
	case requestData.Voter != "":
		votes, err = s.indexer.getVotesByVoter(requestData.Voter, page, size)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "proposalIndex or voter is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, GetVotesResponse{Votes: append(make([]ProposalVote, 0, len(votes)), votes...)})
}

type GetTransfersReq struct {
	Address string `json:"address"`
	Paging
}

type GetTransfersResponse struct {
	Transfers []Transfer `json:"transfers"`
	Total     uint64     `json:"total"`
}

func (s *Service) handleGetTransfers(c *gin.Context) {
	var requestData GetTransfersReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, size := requestData.normalize()
	transfers, total, err := s.indexer.getTransfers(requestData.Address, page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, GetTransfersResponse{Transfers: append(make([]Transfer, 0, len(transfers)), transfers...), Total: total})
}

type GetMembersResponse struct {
	Members []Member `json:"members"`
}

func (s *Service) handleGetMembers(c *gin.Context) {
	var requestData Paging
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, size := requestData.normalize()
	members, err := s.indexer.getMembers(page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, GetMembersResponse{Members: append(make([]Member, 0, len(members)), members...)})
}
